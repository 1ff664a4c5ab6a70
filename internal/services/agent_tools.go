package services

import (
	"context"
	"encoding/json"
	"fmt"

	"taskpilot/internal/catalog"
	"taskpilot/internal/models"
	"taskpilot/internal/recommend"
)

// Tool represents a function that can be called by the AI agent
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema for OpenAI function calling
	Execute     func(params map[string]interface{}) (string, error)
}

// AgentTools holds dependencies for tool execution
type AgentTools struct {
	catalog       *catalog.Catalog
	engine        *recommend.Engine
	tracker       *recommend.Tracker
	intentService *IntentService
	taskService   *TaskService
	executor      *Executor
}

// NewAgentTools creates a new AgentTools instance
func NewAgentTools(
	cat *catalog.Catalog,
	engine *recommend.Engine,
	tracker *recommend.Tracker,
	intentService *IntentService,
	taskService *TaskService,
	executor *Executor,
) *AgentTools {
	return &AgentTools{
		catalog:       cat,
		engine:        engine,
		tracker:       tracker,
		intentService: intentService,
		taskService:   taskService,
		executor:      executor,
	}
}

// GetAllTools returns all available tools for the agent
func (at *AgentTools) GetAllTools() []Tool {
	return []Tool{
		at.buildListModelsTool(),
		at.buildRecommendModelTool(),
		at.buildModelPerformanceTool(),
		at.buildParseIntentTool(),
		at.buildGetTaskTool(),
		at.buildRunWorkflowTool(),
	}
}

func stringParam(params map[string]interface{}, key string) (string, error) {
	value, ok := params[key].(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return value, nil
}

func floatParam(params map[string]interface{}, key string, defaultValue float64) float64 {
	if value, ok := params[key].(float64); ok {
		return value
	}
	return defaultValue
}

func marshalResult(value interface{}) (string, error) {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(jsonData), nil
}

// buildListModelsTool creates the catalog listing tool
func (at *AgentTools) buildListModelsTool() Tool {
	return Tool{
		Name:        "list_models",
		Description: "List every model in the catalog with its resource requirements, suitability scores and average accuracy.",
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			return marshalResult(at.catalog.Models())
		},
	}
}

// buildRecommendModelTool creates the model recommendation tool
func (at *AgentTools) buildRecommendModelTool() Tool {
	return Tool{
		Name:        "recommend_model",
		Description: "Pick the best-fit model for a task given its category, priority and the device's resource constraints.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Task category: general, communication, productivity, automation, analytics or learning",
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"description": "Task priority: low, medium, high or critical",
				},
				"max_memory_mb": map[string]interface{}{
					"type":        "number",
					"description": "Device memory ceiling in MB (0 = unconstrained)",
				},
				"battery_optimization_level": map[string]interface{}{
					"type":        "number",
					"description": "Battery optimization level 0-3, higher filters more aggressively",
				},
			},
			"required": []string{"category", "priority"},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			categoryStr, err := stringParam(params, "category")
			if err != nil {
				return "", err
			}
			priorityStr, err := stringParam(params, "priority")
			if err != nil {
				return "", err
			}

			category := models.TaskCategory(categoryStr)
			if !category.Valid() {
				return "", fmt.Errorf("unknown category %q", categoryStr)
			}
			priority := models.TaskPriority(priorityStr)
			if !priority.Valid() {
				return "", fmt.Errorf("unknown priority %q", priorityStr)
			}

			ectx := models.ExecutionContext{
				MaxMemoryMB:              floatParam(params, "max_memory_mb", 0),
				BatteryOptimizationLevel: int(floatParam(params, "battery_optimization_level", 0)),
			}

			return marshalResult(at.engine.Recommend(category, priority, ectx))
		},
	}
}

// buildModelPerformanceTool creates the performance lookup tool
func (at *AgentTools) buildModelPerformanceTool() Tool {
	return Tool{
		Name:        "get_model_performance",
		Description: "Get the recorded performance aggregate for one model, or for all models when no name is given.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"model_name": map[string]interface{}{
					"type":        "string",
					"description": "Catalog model name (optional)",
				},
			},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			if name, ok := params["model_name"].(string); ok && name != "" {
				perf := at.tracker.Get(name)
				if perf == nil {
					return "", fmt.Errorf("no recorded performance for model %q", name)
				}
				return marshalResult(perf)
			}
			return marshalResult(at.tracker.Snapshot())
		},
	}
}

// buildParseIntentTool creates the natural language intent tool
func (at *AgentTools) buildParseIntentTool() Tool {
	return Tool{
		Name:        "parse_intent",
		Description: "Parse a natural language command into a task intent (verb, category, priority).",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "The command text to parse",
				},
			},
			"required": []string{"text"},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			text, err := stringParam(params, "text")
			if err != nil {
				return "", err
			}
			return marshalResult(at.intentService.Parse(text))
		},
	}
}

// buildGetTaskTool creates the task lookup tool
func (at *AgentTools) buildGetTaskTool() Tool {
	return Tool{
		Name:        "get_task",
		Description: "Get a task by ID, including its status and assigned model.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"task_id": map[string]interface{}{
					"type":        "string",
					"description": "The task ID",
				},
			},
			"required": []string{"task_id"},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			taskID, err := stringParam(params, "task_id")
			if err != nil {
				return "", err
			}
			task, err := at.taskService.GetTask(taskID)
			if err != nil {
				return "", err
			}
			return marshalResult(task)
		},
	}
}

// buildRunWorkflowTool creates the synchronous workflow execution tool
func (at *AgentTools) buildRunWorkflowTool() Tool {
	return Tool{
		Name:        "run_workflow",
		Description: "Execute a small workflow of tasks synchronously and return the per-task outcomes.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"workflow": map[string]interface{}{
					"type":        "object",
					"description": "Workflow request: {name, tasks: [{name, description, priority, category}], maxMemoryMb, batteryOptimizationLevel}",
				},
			},
			"required": []string{"workflow"},
		},
		Execute: func(params map[string]interface{}) (string, error) {
			raw, ok := params["workflow"]
			if !ok {
				return "", fmt.Errorf("workflow must be an object")
			}
			encoded, err := json.Marshal(raw)
			if err != nil {
				return "", fmt.Errorf("invalid workflow parameter: %w", err)
			}
			var request models.ExecuteWorkflowRequest
			if err := json.Unmarshal(encoded, &request); err != nil {
				return "", fmt.Errorf("invalid workflow parameter: %w", err)
			}

			result, err := at.executor.ExecuteWorkflow(context.Background(), request)
			if err != nil {
				return "", err
			}
			return marshalResult(result)
		},
	}
}
