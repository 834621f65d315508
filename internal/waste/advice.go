package waste

// Advice is the presentation metadata attached to a category.
type Advice struct {
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	Instructions string `json:"instructions"`
}

// Neutral values for Unknown and anything outside the fixed table.
const (
	DefaultColor        = "#666666"
	DefaultIcon         = "❓"
	DefaultInstructions = "请按照当地垃圾分类标准处理"
)

var adviceTable = map[Category]Advice{
	Recyclable: {Color: "#4CAF50", Icon: "♻️", Instructions: "清洗干净后投入蓝色回收桶，可换取积分或现金"},
	Hazardous:  {Color: "#F44336", Icon: "☠️", Instructions: "投入红色有害垃圾桶，由专业机构处理"},
	Kitchen:    {Color: "#FF9800", Icon: "🍎", Instructions: "沥干水分后投入绿色厨余垃圾桶，可用于堆肥"},
	Other:      {Color: "#9E9E9E", Icon: "🗑️", Instructions: "投入灰色其他垃圾桶，进行填埋或焚烧处理"},
}

// Advise returns the color, icon and disposal instructions for c.
func Advise(c Category) Advice {
	if a, ok := adviceTable[c]; ok {
		return a
	}
	return Advice{Color: DefaultColor, Icon: DefaultIcon, Instructions: DefaultInstructions}
}

// Color returns the display color for c.
func Color(c Category) string { return Advise(c).Color }

// Icon returns the display glyph for c.
func Icon(c Category) string { return Advise(c).Icon }

// Suggestion returns the disposal instructions for c.
func Suggestion(c Category) string { return Advise(c).Instructions }
