package classify

import (
	"fmt"
	"strings"

	"github.com/hurttlocker/wastesort/internal/waste"
)

// KeywordTable is one category's ordered list of literal substrings.
type KeywordTable struct {
	Category waste.Category
	Keywords []string
	// Explanation is appended after the matched keyword in the reason text.
	Explanation string
}

// KeywordHeuristic is the last-resort guess used when no stored rule matches.
// Tables are evaluated in order and the first keyword found anywhere in the
// item name wins; there is no scoring.
type KeywordHeuristic struct {
	tables []KeywordTable
}

// DefaultKeywordTables returns the built-in tables in evaluation order:
// Hazardous, Kitchen, Recyclable, Other. Hazardous comes first so that a name
// mixing a hazardous token with a food or recyclable token is never under-classified.
func DefaultKeywordTables() []KeywordTable {
	return []KeywordTable{
		{
			Category:    waste.Hazardous,
			Keywords:    []string{"电池", "灯管", "灯泡", "温度计", "血压计", "药", "油漆", "农药", "化学", "汞", "铅", "镉", "荧光", "节能灯", "水银"},
			Explanation: "may contain hazardous substances",
		},
		{
			Category:    waste.Kitchen,
			Keywords:    []string{"菜", "果", "肉", "鱼", "虾", "蛋", "米", "面", "豆", "奶", "剩", "皮", "核", "渣", "骨", "壳", "叶", "根", "茎"},
			Explanation: "organic waste",
		},
		{
			Category:    waste.Recyclable,
			Keywords:    []string{"纸", "塑料", "玻璃", "金属", "铁", "铝", "铜", "钢", "瓶", "罐", "盒", "箱", "袋", "报纸", "杂志", "书", "本", "卡片"},
			Explanation: "material can be recycled",
		},
		{
			Category:    waste.Other,
			Keywords:    []string{"烟", "灰", "尿布", "卫生", "陶瓷", "砖", "瓦", "灰土", "毛发", "织物", "皮革", "橡胶", "木材"},
			Explanation: "hard to recycle",
		},
	}
}

// NewKeywordHeuristic builds a heuristic over tables, copied so later changes
// to the argument have no effect.
func NewKeywordHeuristic(tables []KeywordTable) *KeywordHeuristic {
	cp := make([]KeywordTable, len(tables))
	for i, t := range tables {
		cp[i] = KeywordTable{
			Category:    t.Category,
			Keywords:    append([]string(nil), t.Keywords...),
			Explanation: t.Explanation,
		}
	}
	return &KeywordHeuristic{tables: cp}
}

// Match returns the category of the first keyword contained in itemName.
func (h *KeywordHeuristic) Match(itemName string) (waste.Category, string, bool) {
	for _, table := range h.tables {
		for _, kw := range table.Keywords {
			if kw != "" && strings.Contains(itemName, kw) {
				return table.Category, fmt.Sprintf("contains keyword '%s', %s", kw, table.Explanation), true
			}
		}
	}
	return waste.Unknown, "", false
}
