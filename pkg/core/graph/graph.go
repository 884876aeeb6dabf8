package graph

// Task 任务定义（对外导出）
// Dependencies 按声明顺序保存，可能引用未定义的任务，解析时才报错
type Task struct {
	Name         string   `json:"name" yaml:"name"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// Build 构建定义（对外导出）
// Tasks 为入口任务列表，按声明顺序保存
type Build struct {
	Name  string   `json:"name" yaml:"name"`
	Tasks []string `json:"tasks" yaml:"tasks"`
}

// adjacency 按声明顺序保存的名称到名称列表的映射（内部使用）
// TaskGraph 与 BuildGraph 共用，加载后只读
type adjacency struct {
	kind  Kind
	order []string
	edges map[string][]string
}

// newAdjacency 校验记录并构建映射，任一记录非法则整体失败
func newAdjacency(kind Kind, source string, names []string, lists [][]string) (*adjacency, error) {
	if len(names) == 0 {
		return nil, validationf(source, "No %ss defined in '%s'", kind, source)
	}

	a := &adjacency{
		kind:  kind,
		order: make([]string, 0, len(names)),
		edges: make(map[string][]string, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, validationf(source, "Invalid %s definition: missing 'name'", kind)
		}
		if _, exists := a.edges[name]; exists {
			return nil, validationf(source, "Duplicate %s name '%s' in '%s'", kind, name, source)
		}
		a.order = append(a.order, name)
		a.edges[name] = cloneList(lists[i])
	}
	return a, nil
}

func (a *adjacency) names() []string {
	return cloneList(a.order)
}

func (a *adjacency) list(name string) ([]string, bool) {
	l, ok := a.edges[name]
	if !ok {
		return nil, false
	}
	return cloneList(l), true
}

func cloneList(l []string) []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

// TaskGraph 任务图：任务名 -> 依赖任务名列表（对外导出）
// 边 A -> B 表示 A 依赖 B。加载后只读，可在多个goroutine间共享
type TaskGraph struct {
	adj *adjacency
}

// NewTaskGraph 从任务记录构建任务图（对外导出）
// source 仅用于错误消息
func NewTaskGraph(source string, tasks []Task) (*TaskGraph, error) {
	names := make([]string, len(tasks))
	lists := make([][]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.Name
		lists[i] = t.Dependencies
	}
	adj, err := newAdjacency(KindTask, source, names, lists)
	if err != nil {
		return nil, err
	}
	return &TaskGraph{adj: adj}, nil
}

// Len 返回任务数量
func (g *TaskGraph) Len() int {
	return len(g.adj.order)
}

// Names 按声明顺序返回所有任务名
func (g *TaskGraph) Names() []string {
	return g.adj.names()
}

// Has 判断任务是否已定义
func (g *TaskGraph) Has(name string) bool {
	_, ok := g.adj.edges[name]
	return ok
}

// DependenciesOf 返回任务的直接依赖列表，任务未定义时ok为false
func (g *TaskGraph) DependenciesOf(name string) ([]string, bool) {
	return g.adj.list(name)
}

// Dependencies 返回任务的直接依赖列表
func (g *TaskGraph) Dependencies(name string) ([]string, error) {
	deps, ok := g.adj.list(name)
	if !ok {
		return nil, &NotFoundError{Kind: KindTask, Name: name}
	}
	return deps, nil
}

// Lookup 按名称查询任务
func (g *TaskGraph) Lookup(name string) (Task, error) {
	deps, err := g.Dependencies(name)
	if err != nil {
		return Task{}, err
	}
	return Task{Name: name, Dependencies: deps}, nil
}

// Tasks 按声明顺序返回所有任务
func (g *TaskGraph) Tasks() []Task {
	out := make([]Task, 0, g.Len())
	for _, name := range g.adj.order {
		deps, _ := g.adj.list(name)
		out = append(out, Task{Name: name, Dependencies: deps})
	}
	return out
}

// BuildGraph 构建图：构建名 -> 入口任务名列表（对外导出）
type BuildGraph struct {
	adj *adjacency
}

// NewBuildGraph 从构建记录构建构建图（对外导出）
func NewBuildGraph(source string, builds []Build) (*BuildGraph, error) {
	names := make([]string, len(builds))
	lists := make([][]string, len(builds))
	for i, b := range builds {
		names[i] = b.Name
		lists[i] = b.Tasks
	}
	adj, err := newAdjacency(KindBuild, source, names, lists)
	if err != nil {
		return nil, err
	}
	return &BuildGraph{adj: adj}, nil
}

// Len 返回构建数量
func (g *BuildGraph) Len() int {
	return len(g.adj.order)
}

// Names 按声明顺序返回所有构建名
func (g *BuildGraph) Names() []string {
	return g.adj.names()
}

// Has 判断构建是否已定义
func (g *BuildGraph) Has(name string) bool {
	_, ok := g.adj.edges[name]
	return ok
}

// EntryTasks 返回构建的直接入口任务列表
func (g *BuildGraph) EntryTasks(name string) ([]string, error) {
	tasks, ok := g.adj.list(name)
	if !ok {
		return nil, &NotFoundError{Kind: KindBuild, Name: name}
	}
	return tasks, nil
}

// Lookup 按名称查询构建
func (g *BuildGraph) Lookup(name string) (Build, error) {
	tasks, err := g.EntryTasks(name)
	if err != nil {
		return Build{}, err
	}
	return Build{Name: name, Tasks: tasks}, nil
}

// Builds 按声明顺序返回所有构建
func (g *BuildGraph) Builds() []Build {
	out := make([]Build, 0, g.Len())
	for _, name := range g.adj.order {
		tasks, _ := g.adj.list(name)
		out = append(out, Build{Name: name, Tasks: tasks})
	}
	return out
}

// Snapshot 一次加载得到的完整定义（对外导出）
// 发布后不再修改，重新加载时整体替换
type Snapshot struct {
	Tasks  *TaskGraph
	Builds *BuildGraph
}
