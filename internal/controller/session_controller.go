package controller

import (
	"hackassist_web/internal/model"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionController struct{}

func NewSessionController() *SessionController {
	return &SessionController{}
}

type SessionView struct {
	User       *model.User         `json:"user"`
	Role       model.DashboardRole `json:"role"`
	Authorized bool                `json:"authorized"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student faculty hod" example:"faculty"`
}

func sessionView(app *state.AppState) SessionView {
	user := app.Session.User()
	return SessionView{
		User:       user,
		Role:       app.Session.Role(),
		Authorized: app.Session.Authorized(),
	}
}

// GetSession godoc
// @Summary 当前会话
// @Description 返回当前用户（未登录为 null）与仪表盘角色
// @Tags 会话
// @Produce json
// @Success 200 {object} util.Response{data=SessionView}
// @Router /api/session [get]
func (ctrl *SessionController) GetSession(c *gin.Context) {
	util.Success(c, sessionView(state.FromContext(c)))
}

// SetRole godoc
// @Summary 切换仪表盘角色
// @Tags 会话
// @Accept json
// @Produce json
// @Param body body SetRoleRequest true "角色"
// @Success 200 {object} util.Response{data=SessionView}
// @Router /api/session/role [put]
func (ctrl *SessionController) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrInvalidRole.Error())
		return
	}

	app := state.FromContext(c)
	if err := app.Session.SetRole(model.DashboardRole(req.Role)); err != nil {
		respondError(c, err, "")
		return
	}
	util.Success(c, sessionView(app))
}

// Logout godoc
// @Summary 退出登录
// @Description 清除当前用户及其持久化快照
// @Tags 会话
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/session/logout [post]
func (ctrl *SessionController) Logout(c *gin.Context) {
	app := state.FromContext(c)
	if err := app.Logout(c.Request.Context()); err != nil {
		// 内存中已退出，快照删除失败只记录
		logger.Log.Warn("Logout left a stale snapshot", zap.String("clientId", app.ClientID), zap.Error(err))
	}
	util.Success(c, flowResponse{
		View:     sessionView(app),
		Redirect: &util.Redirect{To: util.PathAuth},
	})
}
