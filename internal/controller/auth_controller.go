package controller

import (
	"hackassist_web/internal/model"
	"hackassist_web/internal/service"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthController drives the onboarding wizard: account step then profile steps.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

type AuthModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=login register" example:"login"`
}

type AuthSubmitRequest struct {
	Name     string `json:"name" binding:"max=200" example:"Ada"`
	Email    string `json:"email" binding:"required,email" example:"ada@example.com"`
	Password string `json:"password" binding:"required" example:"secret"`
}

type OptionRequest struct {
	Value string `json:"value" binding:"required" example:"CSE"`
}

type ToggleResponse struct {
	Selected bool                   `json:"selected"`
	View     service.OnboardingView `json:"view"`
}

func wizardResponse(c *gin.Context, w *service.OnboardingWizard, nav *service.Navigation) {
	util.Success(c, flowResponse{View: w.View(), Redirect: nav.Redirect()})
}

// GetWizard godoc
// @Summary 向导状态
// @Description 已完成引导的用户直接跳转到仪表盘
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Router /auth [get]
func (ctrl *AuthController) GetWizard(c *gin.Context) {
	app := state.FromContext(c)
	var nav *service.Navigation
	if app.Session.Authorized() {
		nav = &service.Navigation{To: util.PathDashboard}
	}
	wizardResponse(c, app.Wizard(), nav)
}

// SetMode godoc
// @Summary 切换登录/注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body AuthModeRequest true "模式"
// @Success 200 {object} util.Response
// @Router /auth/mode [post]
func (ctrl *AuthController) SetMode(c *gin.Context) {
	var req AuthModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrUnknownOption.Error())
		return
	}
	w := state.FromContext(c).Wizard()
	if err := w.SetMode(service.AuthMode(req.Mode)); err != nil {
		respondError(c, err, "")
		return
	}
	wizardResponse(c, w, nil)
}

// Submit godoc
// @Summary 提交账号信息
// @Description 登录或注册；已完成引导的账号直接进入仪表盘
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body AuthSubmitRequest true "账号信息"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /auth/submit [post]
func (ctrl *AuthController) Submit(c *gin.Context) {
	var req AuthSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrMissingField.Error())
		return
	}
	w := state.FromContext(c).Wizard()
	nav, err := w.SubmitAuth(c.Request.Context(), service.Credentials{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err, util.MsgAuthFailure)
		return
	}
	wizardResponse(c, w, nav)
}

// SelectDepartment godoc
// @Summary 选择院系
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body OptionRequest true "院系"
// @Success 200 {object} util.Response
// @Router /auth/department [post]
func (ctrl *AuthController) SelectDepartment(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrUnknownOption.Error())
		return
	}
	w := state.FromContext(c).Wizard()
	if err := w.SelectDepartment(req.Value); err != nil {
		respondError(c, err, "")
		return
	}
	wizardResponse(c, w, nil)
}

// SelectExperience godoc
// @Summary 选择经验等级
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body OptionRequest true "Beginner / Intermediate / Expert"
// @Success 200 {object} util.Response
// @Router /auth/experience [post]
func (ctrl *AuthController) SelectExperience(c *gin.Context) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrUnknownOption.Error())
		return
	}
	w := state.FromContext(c).Wizard()
	if err := w.SelectExperience(model.ExperienceLevel(req.Value)); err != nil {
		respondError(c, err, "")
		return
	}
	wizardResponse(c, w, nil)
}

// ToggleSkill godoc
// @Summary 选择/取消技能
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body OptionRequest true "技能"
// @Success 200 {object} util.Response{data=ToggleResponse}
// @Router /auth/skills/toggle [post]
func (ctrl *AuthController) ToggleSkill(c *gin.Context) {
	ctrl.toggle(c, (*service.OnboardingWizard).ToggleSkill)
}

// ToggleInterest godoc
// @Summary 选择/取消兴趣方向
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body OptionRequest true "兴趣"
// @Success 200 {object} util.Response{data=ToggleResponse}
// @Router /auth/interests/toggle [post]
func (ctrl *AuthController) ToggleInterest(c *gin.Context) {
	ctrl.toggle(c, (*service.OnboardingWizard).ToggleInterest)
}

func (ctrl *AuthController) toggle(c *gin.Context, fn func(*service.OnboardingWizard, string) (bool, error)) {
	var req OptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrUnknownOption.Error())
		return
	}
	w := state.FromContext(c).Wizard()
	selected, err := fn(w, req.Value)
	if err != nil {
		respondError(c, err, "")
		return
	}
	util.Success(c, ToggleResponse{Selected: selected, View: w.View()})
}

// ConfirmSkills godoc
// @Summary 确认技能
// @Description 至少选择一项技能
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Router /auth/skills/confirm [post]
func (ctrl *AuthController) ConfirmSkills(c *gin.Context) {
	w := state.FromContext(c).Wizard()
	if err := w.ConfirmSkills(); err != nil {
		respondError(c, err, "")
		return
	}
	wizardResponse(c, w, nil)
}

// SubmitProfile godoc
// @Summary 完成引导
// @Description 提交院系、经验、技能与兴趣，成功后进入仪表盘
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /auth/profile [post]
func (ctrl *AuthController) SubmitProfile(c *gin.Context) {
	w := state.FromContext(c).Wizard()
	nav, err := w.SubmitProfile(c.Request.Context())
	if err != nil {
		respondError(c, err, util.MsgAuthFailure)
		return
	}
	wizardResponse(c, w, nav)
}
