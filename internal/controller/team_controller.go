package controller

import (
	"fmt"
	"hackassist_web/internal/model"
	"hackassist_web/internal/service"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"

	"github.com/gin-gonic/gin"
)

// TeamController 处理活动报名（创建/加入小队）
type TeamController struct{}

func NewTeamController() *TeamController {
	return &TeamController{}
}

type TeamModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=create join" example:"create"`
}

type CreateTeamRequest struct {
	TeamName string `json:"team_name" binding:"max=100" example:"Null Pointers"`
}

type JoinTeamRequest struct {
	TeamCode string `json:"team_code" example:"ab12cd"`
}

// Enter godoc
// @Summary 进入报名流程
// @Description 加载活动并检查是否已有小队；活动ID无效时延迟跳转回仪表盘
// @Tags 报名
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Param mode query string false "join 表示直接进入加入模式"
// @Success 200 {object} util.Response
// @Router /register/{hackathonId} [get]
func (ctrl *TeamController) Enter(c *gin.Context) {
	app := state.FromContext(c)
	flow := app.MountTeamFlow(c.Param("hackathonId"))

	nav, err := flow.Enter(c.Request.Context(), c.Query("mode") == string(model.TeamModeJoin))
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	resp := flowResponse{View: flow.View(), Redirect: nav.Redirect()}
	if nav != nil && nav.After > 0 {
		resp.Message = util.MsgInvalidMission
	}
	util.Success(c, resp)
}

// current returns the mounted flow for the route's mission.
func (ctrl *TeamController) current(c *gin.Context) (*service.TeamFlow, bool) {
	flow, ok := state.FromContext(c).TeamFlow(c.Param("hackathonId"))
	if !ok {
		util.Conflict(c, "registration flow not started for this mission")
		return nil, false
	}
	return flow, true
}

// SetMode godoc
// @Summary 选择创建或加入
// @Tags 报名
// @Accept json
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Param body body TeamModeRequest true "模式"
// @Success 200 {object} util.Response
// @Router /register/{hackathonId}/mode [post]
func (ctrl *TeamController) SetMode(c *gin.Context) {
	flow, ok := ctrl.current(c)
	if !ok {
		return
	}
	var req TeamModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrInvalidTransition.Error())
		return
	}
	if err := flow.SetMode(model.TeamMode(req.Mode)); err != nil {
		respondError(c, err, "")
		return
	}
	util.Success(c, flowResponse{View: flow.View()})
}

// Abort godoc
// @Summary 返回选择
// @Tags 报名
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /register/{hackathonId}/abort [post]
func (ctrl *TeamController) Abort(c *gin.Context) {
	flow, ok := ctrl.current(c)
	if !ok {
		return
	}
	if err := flow.Abort(); err != nil {
		respondError(c, err, "")
		return
	}
	util.Success(c, flowResponse{View: flow.View()})
}

// Create godoc
// @Summary 创建小队
// @Description 成功后返回邀请码和成员列表
// @Tags 报名
// @Accept json
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Param body body CreateTeamRequest true "小队名称"
// @Success 200 {object} util.Response
// @Router /register/{hackathonId}/create [post]
func (ctrl *TeamController) Create(c *gin.Context) {
	flow, ok := ctrl.current(c)
	if !ok {
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrTeamNameRequired.Error())
		return
	}
	if err := flow.Create(c.Request.Context(), req.TeamName); err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, flowResponse{View: flow.View()})
}

// Join godoc
// @Summary 加入小队
// @Description 邀请码不区分大小写；成功后跳转到仪表盘
// @Tags 报名
// @Accept json
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Param body body JoinTeamRequest true "邀请码"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /register/{hackathonId}/join [post]
func (ctrl *TeamController) Join(c *gin.Context) {
	flow, ok := ctrl.current(c)
	if !ok {
		return
	}
	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrInvalidTeamCode.Error())
		return
	}
	result, err := flow.Join(c.Request.Context(), req.TeamCode)
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, flowResponse{
		View:     flow.View(),
		Redirect: result.Navigation.Redirect(),
		Message:  fmt.Sprintf("Successfully joined %s!", result.TeamName),
	})
}

// Return godoc
// @Summary 完成报名并返回
// @Tags 报名
// @Produce json
// @Param hackathonId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /register/{hackathonId}/return [post]
func (ctrl *TeamController) Return(c *gin.Context) {
	flow, ok := ctrl.current(c)
	if !ok {
		return
	}
	nav, err := flow.Return()
	if err != nil {
		respondError(c, err, "")
		return
	}
	util.Success(c, flowResponse{View: flow.View(), Redirect: nav.Redirect()})
}
