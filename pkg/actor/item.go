package actor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/labels"
)

// ItemType is the kind of an owned item.
type ItemType string

const (
	ItemGear       ItemType = "item"
	ItemFeature    ItemType = "feature"
	ItemSpecialty  ItemType = "specialty"
	ItemBoon       ItemType = "boon"
	ItemCustomRoll ItemType = "customRoll"
	ItemPower      ItemType = "power"
	ItemPerk       ItemType = "perk"
)

var itemTypes = map[ItemType]bool{
	ItemGear: true, ItemFeature: true, ItemSpecialty: true, ItemBoon: true,
	ItemCustomRoll: true, ItemPower: true, ItemPerk: true,
}

// Feature subtypes.
const (
	FeatureBackground = "background"
	FeatureMerit      = "merit"
	FeatureFlaw       = "flaw"
)

const (
	DefaultItemImg = "/icons/svg/item-bag.svg"
	PowerImg       = "/systems/vtm5e/assets/icons/powers/discipline.png"
	PerkImg        = "/systems/vtm5e/assets/icons/powers/edge.png"
)

// Item is an owned item embedded in a sheet.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        ItemType `json:"type"`
	Img         string   `json:"img,omitempty"`
	FeatureType string   `json:"featuretype,omitempty"`
	Discipline  string   `json:"discipline,omitempty"`
	Edge        string   `json:"edge,omitempty"`
	Skill       string   `json:"skill,omitempty"`
	BoonType    string   `json:"boontype,omitempty"`
	Dice1       string   `json:"dice1,omitempty"`
	Dice2       string   `json:"dice2,omitempty"`
	Points      int      `json:"points,omitempty"`
	Level       int      `json:"level,omitempty"`
	Description string   `json:"description,omitempty"`
}

// NewItem fills in an ID, per-type defaults, an image and a default name for
// a newly created item. Fields already set on data are kept.
func NewItem(typ ItemType, data Item) (Item, error) {
	if !itemTypes[typ] {
		return Item{}, fmt.Errorf("unknown item type %q", typ)
	}

	item := data
	item.Type = typ
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	switch typ {
	case ItemSpecialty:
		if item.Skill == "" {
			item.Skill = "academics"
		}
	case ItemBoon:
		if item.BoonType == "" {
			item.BoonType = "Trivial"
		}
	case ItemCustomRoll:
		if item.Dice1 == "" && item.Dice2 == "" {
			item.Dice1 = "strength"
			item.Dice2 = "athletics"
		}
	case ItemFeature:
		if item.FeatureType == "" {
			item.FeatureType = FeatureBackground
		}
	}

	if item.Img == "" {
		switch typ {
		case ItemPower:
			item.Img = PowerImg
		case ItemPerk:
			item.Img = PerkImg
		default:
			item.Img = DefaultItemImg
		}
	}

	if item.Name == "" {
		item.Name = labels.Localize(defaultNameKey(item))
	}
	return item, nil
}

func defaultNameKey(item Item) string {
	switch item.Type {
	case ItemFeature:
		return labels.FeatureLabel(item.FeatureType)
	case ItemPower:
		if key := labels.DisciplineLabel(item.Discipline, false); key != "" {
			return key
		}
	case ItemPerk:
		if item.Edge != "" {
			return labels.FeatureLabel(item.Edge)
		}
	}
	return labels.FeatureLabel(string(item.Type))
}
