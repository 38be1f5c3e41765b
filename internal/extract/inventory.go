package extract

import "github.com/solvaholic/phonemine/internal/normalize"

// Stock is the remaining quantity of one item
type Stock struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Inventory is the backpack as told by the transcript
type Inventory struct {
	Items  []InventoryItem `json:"items"`
	Usages []ItemUsage     `json:"usages"`
	Stock  []Stock         `json:"stock"`
}

// Inventory collects [背包物品] and [物品使用] tokens. Stock is the sum of
// listed counts minus usages per item name, never below zero, in the order
// names were first seen.
func (s *Session) Inventory(messages []normalize.ChatMessage) Inventory {
	inv := Inventory{
		Items:  []InventoryItem{},
		Usages: []ItemUsage{},
		Stock:  []Stock{},
	}
	counts := make(map[string]int)
	var names []string
	track := func(name string, delta int) {
		if _, ok := counts[name]; !ok {
			names = append(names, name)
		}
		counts[name] += delta
	}

	for _, msg := range messages {
		for _, m := range findAll(inventoryPattern, msg.Body) {
			item := InventoryItem{
				Name:               m.fields[0],
				Type:               m.fields[1],
				Count:              parseAmount(m.fields[2]),
				Description:        m.fields[3],
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			}
			inv.Items = append(inv.Items, item)
			track(item.Name, item.Count)
		}
		for _, m := range findAll(itemUsePattern, msg.Body) {
			usage := ItemUsage{
				ItemName:           m.fields[0],
				Quantity:           parseAmount(m.fields[1]),
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			}
			inv.Usages = append(inv.Usages, usage)
			track(usage.ItemName, -usage.Quantity)
		}
	}

	for _, name := range names {
		inv.Stock = append(inv.Stock, Stock{Name: name, Count: max(counts[name], 0)})
	}
	return inv
}
