package physics

import "testing"

func TestMaterialPresets(t *testing.T) {
	for _, name := range []string{"default", "ice", "rubber", "wood", "metal", "stone"} {
		m, ok := MaterialByName(name)
		if !ok {
			t.Errorf("Preset %q not registered", name)
			continue
		}
		if m.Name != name {
			t.Errorf("Preset %q carries wrong name %q", name, m.Name)
		}
	}

	ice, _ := MaterialByName("ice")
	rubber, _ := MaterialByName("rubber")
	if ice.Friction >= rubber.Friction {
		t.Error("Ice should have less friction than rubber")
	}
	if rubber.Restitution <= ice.Restitution {
		t.Error("Rubber should bounce more than ice")
	}
}

func TestMaterialUnknownLookup(t *testing.T) {
	if _, ok := MaterialByName("unobtanium"); ok {
		t.Error("Unknown material should not resolve")
	}
}

func TestRegisterMaterialDuplicatePanics(t *testing.T) {
	RegisterMaterial(Material{Name: "test-velcro", Friction: 0.95, Restitution: 0})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on duplicate material registration")
		}
	}()
	RegisterMaterial(Material{Name: "test-velcro", Friction: 0.5, Restitution: 0})
}

func TestMaterialNamesContainsPresets(t *testing.T) {
	names := MaterialNames()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
	}
	if !seen["default"] || !seen["ice"] {
		t.Errorf("MaterialNames missing presets, got %v", names)
	}
}
