package main

import (
	"fmt"
	"strings"

	"github.com/solvaholic/phonemine/internal/classify"
)

func main() {
	fmt.Println("phonemine - Addressee Classification Demo")
	fmt.Println()

	// Addressees as they appear in "向<name>（<number>）发送表情包" lines
	examples := []struct {
		name   string
		number string
		desc   string
	}{
		{
			name:   "小明",
			number: "123456",
			desc:   "Short number, plain name",
		},
		{
			name:   "吃货",
			number: "556677889",
			desc:   "Nine-digit number",
		},
		{
			name:   "吃货群",
			number: "12345678",
			desc:   "Group keyword in the name",
		},
		{
			name:   "相亲相爱一家人群",
			number: "987654321",
			desc:   "Nine digits and a group keyword",
		},
		{
			name:   "小王",
			number: "100200300",
			desc:   "Nine-digit personal number (misclassified)",
		},
	}

	for i, ex := range examples {
		fmt.Printf("%d. %s\n", i+1, ex.desc)
		fmt.Printf("   Addressee: %s（%s）\n", ex.name, ex.number)

		c := classify.ClassifyAddressee(ex.name, ex.number)
		fmt.Printf("   Classification: %s (confidence: %.2f)\n", c.Type, c.Confidence)
		fmt.Printf("   Signals: %s\n\n", strings.Join(c.Signals, ", "))
	}

	fmt.Println("Classification complete!")
}
