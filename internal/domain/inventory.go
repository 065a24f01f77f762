package domain

import "strings"

// InventoryItem is a stack of one item held by a character
type InventoryItem struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// Quality is the grade of a crafted item
type Quality string

const (
	QualityCommon    Quality = "COMMON"
	QualityUncommon  Quality = "UNCOMMON"
	QualityRare      Quality = "RARE"
	QualityEpic      Quality = "EPIC"
	QualityLegendary Quality = "LEGENDARY"
)

// QualityItemID returns the inventory key for a crafted item of the given
// quality. The base quality keeps the plain id.
func QualityItemID(itemID string, base, quality Quality) string {
	if quality == base || quality == "" {
		return itemID
	}
	return itemID + "." + strings.ToLower(string(quality))
}
