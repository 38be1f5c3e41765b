package extract

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// Products returns shop listings from both the 4-field and the legacy
// 3-field [商品] tokens. Listings with the same name in the same message are
// reported once; a 3-field and a 4-field token with different names in one
// message are two products.
func (s *Session) Products(messages []normalize.ChatMessage) []Product {
	products := []Product{}
	for _, msg := range messages {
		for _, m := range findAll(product4Pattern, msg.Body) {
			products = append(products, Product{
				Name:               m.fields[0],
				Type:               m.fields[1],
				Description:        m.fields[2],
				Price:              parseAmount(m.fields[3]),
				Format:             ProductFormat4Field,
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			})
		}
		for _, m := range findAll(product3Pattern, msg.Body) {
			products = append(products, Product{
				Name:               m.fields[0],
				Type:               m.fields[1],
				Price:              parseAmount(m.fields[2]),
				Format:             ProductFormat3Field,
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			})
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return byPlacement(products[i], products[j])
	})
	return lo.UniqBy(products, func(p Product) string {
		return fmt.Sprintf("%d|%s", p.SourceMessageIndex, p.Name)
	})
}
