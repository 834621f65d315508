package predict

import (
	"strings"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// LabelGroup lists the object labels that belong to one category.
type LabelGroup struct {
	Category waste.Category
	Labels   []string
}

type labelEntry struct {
	label    string
	category waste.Category
}

// LabelTable maps recognized object labels to categories. It is built once
// and never changes; the entry order is the order labels were supplied in and
// drives fuzzy lookups.
type LabelTable struct {
	entries []labelEntry
	index   map[string]waste.Category
}

// NewLabelTable builds a table from groups. A label listed twice keeps its
// first category and position.
func NewLabelTable(groups []LabelGroup) *LabelTable {
	t := &LabelTable{index: make(map[string]waste.Category)}
	for _, g := range groups {
		for _, l := range g.Labels {
			l = strings.TrimSpace(l)
			if l == "" {
				continue
			}
			if _, dup := t.index[l]; dup {
				continue
			}
			t.index[l] = g.Category
			t.entries = append(t.entries, labelEntry{label: l, category: g.Category})
		}
	}
	return t
}

// DefaultLabelGroups is the curated label set the zero-shot predictor scores
// images against.
func DefaultLabelGroups() []LabelGroup {
	return []LabelGroup{
		{Category: waste.Recyclable, Labels: []string{
			"塑料瓶", "玻璃瓶", "易拉罐", "纸箱", "报纸", "杂志", "书本", "纸板",
			"塑料容器", "玻璃杯", "金属罐", "铁罐", "铝罐", "纸盒", "包装盒",
			"饮料瓶", "矿泉水瓶", "啤酒瓶", "红酒瓶", "牛奶盒", "快递盒",
		}},
		{Category: waste.Kitchen, Labels: []string{
			"苹果", "香蕉", "橙子", "橘子", "柠檬", "菠萝", "草莓", "西瓜", "葡萄",
			"西红柿", "黄瓜", "白菜", "青菜", "萝卜", "土豆", "红薯", "玉米",
			"茄子", "辣椒", "蘑菇", "面包", "米饭", "面条", "剩菜", "剩饭",
			"鱼骨", "果皮", "果核", "菜叶", "蛋壳", "咖啡渣", "茶叶渣",
		}},
		{Category: waste.Hazardous, Labels: []string{
			"电池", "纽扣电池", "充电电池", "干电池", "灯管", "灯泡", "节能灯",
			"荧光灯", "温度计", "血压计", "药品", "药瓶", "油漆桶", "杀虫剂",
			"消毒剂", "指甲油", "过期化妆品", "水银温度计",
		}},
		{Category: waste.Other, Labels: []string{
			"烟蒂", "纸巾", "卫生纸", "湿纸巾", "尿布", "卫生巾", "猫砂", "狗屎",
			"陶瓷", "碎陶瓷", "砖块", "瓦片", "灰土", "毛发", "一次性餐具",
			"塑料袋", "食品袋", "保鲜膜", "胶带", "口香糖",
		}},
	}
}

// DefaultLabelTable returns a table over DefaultLabelGroups.
func DefaultLabelTable() *LabelTable {
	return NewLabelTable(DefaultLabelGroups())
}

// Lookup resolves label exactly, then by substring containment in either
// direction against the table in order. Blank labels never map.
func (t *LabelTable) Lookup(label string) (waste.Category, bool) {
	label = cleanLabel(label)
	if label == "" {
		return waste.Unknown, false
	}
	if c, ok := t.index[label]; ok {
		return c, true
	}
	for _, e := range t.entries {
		if strings.Contains(e.label, label) || strings.Contains(label, e.label) {
			return e.category, true
		}
	}
	return waste.Unknown, false
}

// Labels returns every label in table order.
func (t *LabelTable) Labels() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.label
	}
	return out
}

// Len returns the number of labels.
func (t *LabelTable) Len() int { return len(t.entries) }
