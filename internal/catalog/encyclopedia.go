package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"

	"github.com/napolitain/solver-simco/internal/models"
)

// Slug turns a display name into a resource id: "Crude oil" -> "crude-oil"
func Slug(name string) models.ResourceID {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return models.ResourceID(strings.TrimSuffix(b.String(), "-"))
}

// ParseEncyclopedia extracts a ResourceNode from one encyclopedia resource document.
// Resources named in notSellable are marked as not tradeable on the exchange.
func ParseEncyclopedia(raw []byte, notSellable map[models.ResourceID]bool) (*models.ResourceNode, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid encyclopedia json")
	}
	doc := gjson.ParseBytes(raw)

	name := doc.Get("name").String()
	if name == "" {
		return nil, fmt.Errorf("encyclopedia entry has no name")
	}
	id := Slug(name)

	node := &models.ResourceNode{
		ID:                   id,
		Name:                 name,
		ProducedPerHour:      doc.Get("producedAnHour").Float(),
		TransportCostPerUnit: doc.Get("transportation").Float(),
		BaseLaborCost:        doc.Get("baseSalary").Float(),
		Sellable:             !notSellable[id],
	}

	doc.Get("producedFrom").ForEach(func(_, in gjson.Result) bool {
		inputName := in.Get("resource.name").String()
		if inputName == "" {
			return true
		}
		node.Inputs = append(node.Inputs, models.InputResource{
			ResourceID:    Slug(inputName),
			AmountPerUnit: in.Get("amount").Float(),
		})
		return true
	})

	return node, nil
}
