package actor

import "testing"

func TestNewItem(t *testing.T) {
	tests := []struct {
		name  string
		typ   ItemType
		data  Item
		check func(t *testing.T, it Item)
	}{
		{
			name: "specialty defaults to academics",
			typ:  ItemSpecialty,
			check: func(t *testing.T, it Item) {
				if it.Skill != "academics" || it.Name != "Specialty" || it.Img != DefaultItemImg {
					t.Errorf("got %+v", it)
				}
			},
		},
		{
			name: "boon defaults to trivial",
			typ:  ItemBoon,
			check: func(t *testing.T, it Item) {
				if it.BoonType != "Trivial" {
					t.Errorf("BoonType = %q", it.BoonType)
				}
			},
		},
		{
			name: "custom roll defaults",
			typ:  ItemCustomRoll,
			check: func(t *testing.T, it Item) {
				if it.Dice1 != "strength" || it.Dice2 != "athletics" {
					t.Errorf("dice = %q + %q", it.Dice1, it.Dice2)
				}
			},
		},
		{
			name: "power named after discipline",
			typ:  ItemPower,
			data: Item{Discipline: "sorcery"},
			check: func(t *testing.T, it Item) {
				if it.Name != "Blood Sorcery" || it.Img != PowerImg {
					t.Errorf("got %+v", it)
				}
			},
		},
		{
			name: "perk named after edge",
			typ:  ItemPerk,
			data: Item{Edge: "arsenal"},
			check: func(t *testing.T, it Item) {
				if it.Name != "Arsenal" || it.Img != PerkImg {
					t.Errorf("got %+v", it)
				}
			},
		},
		{
			name: "feature named after subtype",
			typ:  ItemFeature,
			data: Item{FeatureType: FeatureFlaw},
			check: func(t *testing.T, it Item) {
				if it.Name != "Flaw" {
					t.Errorf("Name = %q", it.Name)
				}
			},
		},
		{
			name: "explicit name kept",
			typ:  ItemGear,
			data: Item{Name: "Crowbar"},
			check: func(t *testing.T, it Item) {
				if it.Name != "Crowbar" || it.ID == "" {
					t.Errorf("got %+v", it)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := NewItem(tt.typ, tt.data)
			if err != nil {
				t.Fatalf("NewItem() error = %v", err)
			}
			if it.Type != tt.typ {
				t.Errorf("Type = %q, want %q", it.Type, tt.typ)
			}
			tt.check(t, it)
		})
	}

	if _, err := NewItem("spaceship", Item{}); err == nil {
		t.Error("expected error for unknown type")
	}
}
