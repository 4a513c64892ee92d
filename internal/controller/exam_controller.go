package controller

import (
	"exam_app_backend/internal/service"
	"exam_app_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService    *service.ExamService
	QuizAPIService *service.QuizAPIService
}

func NewExamController(examService *service.ExamService, quizAPIService *service.QuizAPIService) *ExamController {
	return &ExamController{
		ExamService:    examService,
		QuizAPIService: quizAPIService,
	}
}

// GetTopics godoc
// @Summary 获取主题列表
// @Description 返回固定顺序的可选考试主题
// @Tags 考试
// @Produce  json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/exams/topics [get]
func (c *ExamController) GetTopics(ctx *gin.Context) {
	util.Success(ctx, c.ExamService.Topics())
}

// StartExam godoc
// @Summary 开始考试
// @Description 从上游题库拉取题目并规范化返回，不做任何持久化
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   topic query string false "主题"
// @Param   difficulty query string false "难度"
// @Param   limit query int false "题目数量，默认5"
// @Success 200 {object} util.Response{data=[]service.FormattedQuestion}
// @Failure 401 {object} util.Response "未登录"
// @Failure 500 {object} util.Response "API密钥未配置"
// @Failure 502 {object} util.Response "上游题库不可用"
// @Router /api/exams/start [get]
func (c *ExamController) StartExam(ctx *gin.Context) {
	topic := ctx.Query("topic")
	difficulty := ctx.Query("difficulty")

	limit := 5
	if v := ctx.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	questions, err := c.QuizAPIService.FetchQuestions(ctx.Request.Context(), topic, difficulty, limit)
	if err != nil {
		if errors.Is(err, util.ErrAPIKeyMissing) {
			util.Error(ctx, 500, "API key is not configured.")
		} else if errors.Is(err, util.ErrUpstreamFailure) {
			util.BadGateway(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, questions)
}

// SaveResult godoc
// @Summary 保存考试结果
// @Description 将一次考试的总分和答题明细整体入库
// @Tags 考试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SaveResultReq true "考试结果"
// @Success 200 {object} util.Response{data=service.SaveResultReq} "保存成功，原样返回提交内容"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未登录"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/exams/save_result [post]
func (c *ExamController) SaveResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveResultReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	echo, err := c.ExamService.SaveResult(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, echo)
}

// GetHistory godoc
// @Summary 获取历史记录
// @Description 返回当前用户的考试记录列表和按主题聚合的统计
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.HistoryResponse}
// @Failure 401 {object} util.Response "未登录"
// @Router /api/exams/history [get]
func (c *ExamController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.ExamService.GetHistory(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, history)
}

// GetAttemptDetail godoc
// @Summary 获取单次考试明细
// @Description 返回指定考试记录的全部答题明细，只能查询自己的记录
// @Tags 考试
// @Produce  json
// @Security ApiKeyAuth
// @Param   attemptId path int true "考试记录ID"
// @Success 200 {object} util.Response{data=[]model.AnsweredQuestion}
// @Failure 401 {object} util.Response "未登录"
// @Failure 404 {object} util.Response "记录不存在"
// @Router /api/exams/history/{attemptId} [get]
func (c *ExamController) GetAttemptDetail(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.NotFound(ctx)
		return
	}

	answers, err := c.ExamService.GetAttemptDetail(claims.UserID, attemptID)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, answers)
}
