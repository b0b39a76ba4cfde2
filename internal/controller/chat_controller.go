package controller

import (
	"errors"
	"hackassist_web/internal/model"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

// ChatController 处理聊天助手相关的HTTP请求
type ChatController struct{}

func NewChatController() *ChatController {
	return &ChatController{}
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=4000" example:"Which hackathon fits a Go developer?"`
}

// RegisterRequest 通过聊天报名推荐的活动
type RegisterRequest struct {
	HackathonID string `json:"hackathon_id" example:"1"`
}

type ChatReply struct {
	Reply model.ChatMessage `json:"reply"`
	View  interface{}       `json:"view"`
}

// GetChat godoc
// @Summary 聊天记录
// @Description 返回完整对话以及是否显示报名按钮
// @Tags 聊天
// @Produce json
// @Success 200 {object} util.Response{data=service.ChatView}
// @Router /api/chat [get]
func (ctrl *ChatController) GetChat(c *gin.Context) {
	util.Success(c, state.FromContext(c).Chat.View())
}

// Send godoc
// @Summary 发送消息
// @Description 追加用户消息并请求助手回复；连接失败时回复固定提示
// @Tags 聊天
// @Accept json
// @Produce json
// @Param body body SendMessageRequest true "消息"
// @Success 200 {object} util.Response{data=ChatReply}
// @Router /api/chat [post]
func (ctrl *ChatController) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, util.ErrEmptyMessage.Error())
		return
	}

	chat := state.FromContext(c).Chat
	reply, err := chat.Send(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err, util.MsgConnectionFailure)
		return
	}
	util.Success(c, ChatReply{Reply: reply, View: chat.View()})
}

// Register godoc
// @Summary 报名推荐活动
// @Description 仅在最近一条助手回复为推荐时可用
// @Tags 聊天
// @Accept json
// @Produce json
// @Param body body RegisterRequest false "活动ID，默认 1"
// @Success 200 {object} util.Response{data=ChatReply}
// @Router /api/chat/register [post]
func (ctrl *ChatController) Register(c *gin.Context) {
	var req RegisterRequest
	// 请求体可以为空，但不能是格式错误的 JSON
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(c, "invalid request body")
		return
	}

	chat := state.FromContext(c).Chat
	reply, err := chat.RegisterRecommended(c.Request.Context(), req.HackathonID)
	if err != nil {
		respondError(c, err, util.MsgRegisterFailure)
		return
	}
	util.Success(c, ChatReply{Reply: reply, View: chat.View()})
}
