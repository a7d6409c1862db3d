package sheet

import "github.com/jwebster45206/wod-sheets/pkg/actor"

// Inventory is a sheet's items grouped for display.
type Inventory struct {
	Gear        []actor.Item            `json:"gear"`
	Features    map[string][]actor.Item `json:"features"`
	Specialties []actor.Item            `json:"specialties"`
	Boons       []actor.Item            `json:"boons"`
	CustomRolls []actor.Item            `json:"custom_rolls"`
	// Powers are grouped by discipline, perks by edge.
	Powers map[string][]actor.Item `json:"powers,omitempty"`
	Perks  map[string][]actor.Item `json:"perks,omitempty"`
}

func prepareItems(items []actor.Item) Inventory {
	inv := Inventory{
		Gear:        []actor.Item{},
		Specialties: []actor.Item{},
		Boons:       []actor.Item{},
		CustomRolls: []actor.Item{},
		Features: map[string][]actor.Item{
			actor.FeatureBackground: {},
			actor.FeatureMerit:      {},
			actor.FeatureFlaw:       {},
		},
	}

	for _, it := range items {
		if it.Img == "" {
			it.Img = actor.DefaultItemImg
		}
		switch it.Type {
		case actor.ItemGear:
			inv.Gear = append(inv.Gear, it)
		case actor.ItemFeature:
			inv.Features[it.FeatureType] = append(inv.Features[it.FeatureType], it)
		case actor.ItemSpecialty:
			inv.Specialties = append(inv.Specialties, it)
		case actor.ItemBoon:
			inv.Boons = append(inv.Boons, it)
		case actor.ItemCustomRoll:
			inv.CustomRolls = append(inv.CustomRolls, it)
		}
	}
	return inv
}

func (inv *Inventory) groupPowers(items []actor.Item) {
	inv.Powers = make(map[string][]actor.Item)
	for _, it := range items {
		if it.Type == actor.ItemPower {
			inv.Powers[it.Discipline] = append(inv.Powers[it.Discipline], it)
		}
	}
}

func (inv *Inventory) groupPerks(items []actor.Item) {
	inv.Perks = make(map[string][]actor.Item)
	for _, it := range items {
		if it.Type == actor.ItemPerk {
			inv.Perks[it.Edge] = append(inv.Perks[it.Edge], it)
		}
	}
}
