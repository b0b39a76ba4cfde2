package controller

import (
	"hackassist_web/internal/service"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// GetDashboard godoc
// @Summary 仪表盘
// @Description 学生视图返回活动、推荐与进度；教师/系主任视图返回院系分析
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Failure 302 {string} string "未完成引导时跳转 /auth"
// @Router /app [get]
func (ctrl *DashboardController) GetDashboard(c *gin.Context) {
	app := state.FromContext(c)
	d, err := ctrl.DashboardService.Overview(c.Request.Context(), app.Session.User(), app.Session.Role())
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, d)
}

// GetRecommendations godoc
// @Summary 推荐活动
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Recommendation}
// @Router /app/recommendations [get]
func (ctrl *DashboardController) GetRecommendations(c *gin.Context) {
	app := state.FromContext(c)
	recs, err := ctrl.DashboardService.Recommendations(c.Request.Context(), app.Session.StudentID())
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, recs)
}

// GetProgress godoc
// @Summary 参赛进度
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ProgressEntry}
// @Router /app/progress [get]
func (ctrl *DashboardController) GetProgress(c *gin.Context) {
	app := state.FromContext(c)
	progress, err := ctrl.DashboardService.Progress(c.Request.Context(), app.Session.StudentID())
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, progress)
}

// ExportProgress godoc
// @Summary 导出参赛进度
// @Tags 仪表盘
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /app/progress/export [get]
func (ctrl *DashboardController) ExportProgress(c *gin.Context) {
	app := state.FromContext(c)
	user := app.Session.User()
	progress, err := ctrl.DashboardService.Progress(c.Request.Context(), user.StudentID)
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}

	buf, err := service.ExportProgress(user, progress)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	filename := service.ProgressFilename(user.StudentID, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, util.MimeXLSX, buf.Bytes())
}

// GenerateRoadmap godoc
// @Summary 生成项目路线图
// @Tags 仪表盘
// @Accept json
// @Produce json
// @Param body body service.RoadmapInput false "项目信息"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /app/roadmap [post]
func (ctrl *DashboardController) GenerateRoadmap(c *gin.Context) {
	var in service.RoadmapInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	}
	app := state.FromContext(c)
	roadmap, err := ctrl.DashboardService.Roadmap(c.Request.Context(), app.Session.StudentID(), in)
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, roadmap)
}

// GetAnalytics godoc
// @Summary 院系分析报告
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response{data=service.AnalyticsDashboard}
// @Router /app/analytics [get]
func (ctrl *DashboardController) GetAnalytics(c *gin.Context) {
	util.Success(c, ctrl.DashboardService.Analytics(c.Request.Context()))
}

// Sync godoc
// @Summary 同步活动数据
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /app/sync [post]
func (ctrl *DashboardController) Sync(c *gin.Context) {
	msg, err := ctrl.DashboardService.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err, util.MsgSyncFailed)
		return
	}
	util.Success(c, gin.H{"message": msg})
}

// ListHackathons godoc
// @Summary 活动列表
// @Tags 活动
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Hackathon}
// @Router /api/hackathons [get]
func (ctrl *DashboardController) ListHackathons(c *gin.Context) {
	list, err := ctrl.DashboardService.Hackathons(c.Request.Context())
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, list)
}

// GetHackathon godoc
// @Summary 活动详情
// @Tags 活动
// @Produce json
// @Param id path string true "活动ID"
// @Success 200 {object} util.Response{data=model.Hackathon}
// @Failure 404 {object} util.Response
// @Router /api/hackathon/{id} [get]
func (ctrl *DashboardController) GetHackathon(c *gin.Context) {
	h, err := ctrl.DashboardService.Hackathon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	if h == nil {
		util.NotFound(c)
		return
	}
	util.Success(c, h)
}
