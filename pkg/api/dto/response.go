package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// TaskSummary Task摘要信息
type TaskSummary struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// TaskDetail Task详细信息
type TaskDetail struct {
	TaskSummary
	Dependents []string `json:"dependents"` // 直接依赖该任务的任务
	Order      []string `json:"order"`      // 展开后的执行顺序
}

// BuildSummary Build摘要信息
type BuildSummary struct {
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// BuildDetail Build详细信息
type BuildDetail struct {
	BuildSummary
	Order []string `json:"order"` // 解析后的执行顺序
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse 就绪检查响应
type ReadyResponse struct {
	Status   string `json:"status"`
	Tasks    int    `json:"tasks"`
	Builds   int    `json:"builds"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}
