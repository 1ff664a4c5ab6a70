package api

import (
	"errors"
	"net/http"

	"taskpilot/internal/catalog"
	"taskpilot/internal/models"
	"taskpilot/internal/recommend"
	"taskpilot/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	taskService     *services.TaskService
	intentService   *services.IntentService
	engine          *recommend.Engine
	tracker         *recommend.Tracker
	catalog         *catalog.Catalog
	executor        *services.Executor
	scheduleService *services.ScheduleService
	agentTools      *services.AgentTools
	jwtService      *services.JWTService
	defaultContext  models.ExecutionContext
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	taskService *services.TaskService,
	intentService *services.IntentService,
	engine *recommend.Engine,
	tracker *recommend.Tracker,
	cat *catalog.Catalog,
	executor *services.Executor,
	scheduleService *services.ScheduleService,
	agentTools *services.AgentTools,
	jwtService *services.JWTService,
	defaultContext models.ExecutionContext,
) *Handlers {
	return &Handlers{
		taskService:     taskService,
		intentService:   intentService,
		engine:          engine,
		tracker:         tracker,
		catalog:         cat,
		executor:        executor,
		scheduleService: scheduleService,
		agentTools:      agentTools,
		jwtService:      jwtService,
		defaultContext:  defaultContext,
	}
}

// errorStatus maps agent error codes to HTTP status codes. Anything without
// a code is treated as an internal error.
func errorStatus(err error) int {
	var agentErr *models.AgentError
	if !errors.As(err, &agentErr) {
		return http.StatusInternalServerError
	}
	switch agentErr.Code {
	case models.ErrInvalidConfiguration:
		return http.StatusBadRequest
	case models.ErrResourceLimitExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// AuthTokenHandler handles POST /auth/token
func (h *Handlers) AuthTokenHandler(c *gin.Context) {
	var req models.AuthTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.jwtService.GenerateToken(req.DeviceID, req.DeviceName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthTokenResponse{Token: token})
}

// CreateTaskHandler handles POST /api/tasks
func (h *Handlers) CreateTaskHandler(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(req)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ListTasksHandler handles GET /api/tasks
func (h *Handlers) ListTasksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.taskService.ListTasks()})
}

// GetTaskHandler handles GET /api/tasks/:taskId
func (h *Handlers) GetTaskHandler(c *gin.Context) {
	taskID := c.Param("taskId")
	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// CancelTaskHandler handles POST /api/tasks/:taskId/cancel
func (h *Handlers) CancelTaskHandler(c *gin.Context) {
	taskID := c.Param("taskId")
	if err := h.taskService.CancelTask(taskID); err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler handles DELETE /api/tasks/:taskId
func (h *Handlers) DeleteTaskHandler(c *gin.Context) {
	taskID := c.Param("taskId")
	if _, err := h.taskService.GetTask(taskID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	h.taskService.DeleteTask(taskID)
	c.JSON(http.StatusOK, gin.H{"deleted": taskID})
}

// ParseIntentHandler handles POST /api/intent/parse
func (h *Handlers) ParseIntentHandler(c *gin.Context) {
	var req models.ParseIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.intentService.Parse(req.Text))
}

// RecommendationHandler handles POST /api/recommendations
func (h *Handlers) RecommendationHandler(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	if !req.Priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown priority"})
		return
	}

	// Omitted constraints fall back to the server-configured device defaults.
	// Battery level 1 is the explicit no-filtering request; the engine treats
	// 0 and 1 identically.
	ectx := models.ExecutionContext{
		MaxMemoryMB:              req.MaxMemoryMB,
		BatteryOptimizationLevel: req.BatteryOptimizationLevel,
	}
	if ectx.MaxMemoryMB == 0 {
		ectx.MaxMemoryMB = h.defaultContext.MaxMemoryMB
	}
	if ectx.BatteryOptimizationLevel == 0 {
		ectx.BatteryOptimizationLevel = h.defaultContext.BatteryOptimizationLevel
	}

	c.JSON(http.StatusOK, h.engine.Recommend(req.Category, req.Priority, ectx))
}

// ListModelsHandler handles GET /api/models
func (h *Handlers) ListModelsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.catalog.Models()})
}

// GetModelPerformanceHandler handles GET /api/models/:modelName/performance
func (h *Handlers) GetModelPerformanceHandler(c *gin.Context) {
	modelName := c.Param("modelName")
	if h.catalog.Get(modelName) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
		return
	}

	perf := h.tracker.Get(modelName)
	if perf == nil {
		c.JSON(http.StatusOK, gin.H{"modelName": modelName, "executionCount": 0})
		return
	}
	c.JSON(http.StatusOK, perf)
}

// RecordModelPerformanceHandler handles POST /api/models/:modelName/performance
func (h *Handlers) RecordModelPerformanceHandler(c *gin.Context) {
	modelName := c.Param("modelName")
	if h.catalog.Get(modelName) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "model not found"})
		return
	}

	var req models.RecordPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perf := h.tracker.Record(modelName, models.PerformanceObservation{
		Accuracy:           req.Accuracy,
		InferenceMs:        req.InferenceMs,
		Success:            req.Success,
		ResourceEfficiency: req.ResourceEfficiency,
	})
	c.JSON(http.StatusOK, perf)
}

// ExecuteWorkflowHandler handles POST /api/workflows/execute
// Starts an asynchronous run and returns its ID immediately.
func (h *Handlers) ExecuteWorkflowHandler(c *gin.Context) {
	var req models.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run := h.executor.StartRun(req)
	c.JSON(http.StatusAccepted, models.WorkflowRunResponse{
		RunID:  run.ID,
		Status: string(run.Status),
	})
}

// ExecuteWorkflowSyncHandler handles POST /api/workflows/execute-sync
// Waits for the full run and returns the result directly.
func (h *Handlers) ExecuteWorkflowSyncHandler(c *gin.Context) {
	var req models.ExecuteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.executor.ExecuteWorkflow(c.Request.Context(), req)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWorkflowStatusHandler handles GET /api/workflows/status/:runId
func (h *Handlers) GetWorkflowStatusHandler(c *gin.Context) {
	runID := c.Param("runId")
	run, err := h.executor.GetRun(runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow run not found"})
		return
	}

	response := models.WorkflowStatusResponse{
		RunID:  run.ID,
		Status: string(run.Status),
		Error:  run.Error,
	}
	if run.Result != nil {
		response.Result = run.Result
	}
	c.JSON(http.StatusOK, response)
}

// CreateScheduleHandler handles POST /api/schedules
func (h *Handlers) CreateScheduleHandler(c *gin.Context) {
	var req models.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(req)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// ListSchedulesHandler handles GET /api/schedules
func (h *Handlers) ListSchedulesHandler(c *gin.Context) {
	schedules, err := h.scheduleService.ListSchedules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

// RemoveScheduleHandler handles DELETE /api/schedules/:scheduleId
func (h *Handlers) RemoveScheduleHandler(c *gin.Context) {
	scheduleID := c.Param("scheduleId")
	if err := h.scheduleService.RemoveSchedule(scheduleID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": scheduleID})
}

// ListToolsHandler handles GET /api/agent/tools
func (h *Handlers) ListToolsHandler(c *gin.Context) {
	tools := h.agentTools.GetAllTools()
	out := make([]gin.H, 0, len(tools))
	for _, tool := range tools {
		out = append(out, gin.H{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Parameters,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

// ExecuteToolRequest is the body for POST /api/agent/tools/execute
type ExecuteToolRequest struct {
	Tool   string                 `json:"tool" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// ExecuteToolHandler handles POST /api/agent/tools/execute
func (h *Handlers) ExecuteToolHandler(c *gin.Context) {
	var req ExecuteToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, tool := range h.agentTools.GetAllTools() {
		if tool.Name == req.Tool {
			params := req.Params
			if params == nil {
				params = map[string]interface{}{}
			}
			result, err := tool.Execute(params)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"tool": tool.Name, "result": result})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "unknown tool: " + req.Tool})
}
