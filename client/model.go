package client

// Position 网格坐标
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player 服务端下发的玩家快照（每条 room-state / game-state 整体重建，不做增量修改）
type Player struct {
	ID        string   `json:"id"`
	Position  Position `json:"position"`
	Color     string   `json:"color"`
	Direction string   `json:"direction,omitempty"`
	Alive     bool     `json:"alive"`
}

// FruitKind 果实种类，下游据此选择贴图与音效
type FruitKind int

const (
	FruitPlain FruitKind = iota + 1
	FruitBanana
	FruitRed
)

// AssetName 返回种类对应的资源名
func (k FruitKind) AssetName() string {
	switch k {
	case FruitPlain:
		return "fruit"
	case FruitBanana:
		return "banana"
	case FruitRed:
		return "red"
	default:
		return ""
	}
}

func (k FruitKind) valid() bool { return k >= FruitPlain && k <= FruitRed }

// Fruit 可收集物快照
type Fruit struct {
	ID       string    `json:"id"`
	Position Position  `json:"position"`
	Kind     FruitKind `json:"value"`
}

// Wall 墙体，只有位置
type Wall struct {
	Position Position `json:"position"`
}

// World 世界尺寸（像素）
type World struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CourseSettings 场地配置
type CourseSettings struct {
	BackgroundColor string `json:"backgroundColor"`
	World           World  `json:"world"`
	GridSize        int    `json:"gridSize,omitempty"`
}

// Course 场地：配置 + 有序墙体列表，仅由 room-state 替换
type Course struct {
	Settings CourseSettings `json:"settings"`
	Walls    []Wall         `json:"walls"`
}

// Clone 深拷贝，交给订阅方的副本不与会话持有的状态共享底层数组
func (c Course) Clone() Course {
	out := c
	if c.Walls != nil {
		out.Walls = make([]Wall, len(c.Walls))
		copy(out.Walls, c.Walls)
	}
	return out
}

func clonePlayers(ps []Player) []Player {
	if ps == nil {
		return nil
	}
	out := make([]Player, len(ps))
	copy(out, ps)
	return out
}

func cloneFruits(fs []Fruit) []Fruit {
	if fs == nil {
		return nil
	}
	out := make([]Fruit, len(fs))
	copy(out, fs)
	return out
}
