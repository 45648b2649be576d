package application

import (
	"errors"
	"testing"
)

func TestDefaultLibraryLoads(t *testing.T) {
	lib, err := DefaultLibrary()
	if err != nil {
		t.Fatalf("DefaultLibrary() error = %v", err)
	}
	if lib.Version() != DefaultLibraryVersion {
		t.Errorf("Version = %q, want %q", lib.Version(), DefaultLibraryVersion)
	}
	if len(lib.Keys()) != 10 {
		t.Errorf("Keys count = %v, want 10", len(lib.Keys()))
	}
	if _, ok := lib.Get("bolt"); !ok {
		t.Errorf("Get(bolt) not found")
	}
	if _, ok := lib.Get("no-such"); ok {
		t.Errorf("Get(no-such) = found, want missing")
	}
}

func TestDefinitionValidate(t *testing.T) {
	valid := func() *Definition { return testProjectileDef("w", 600, 480) }

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"empty key", func(d *Definition) { d.Key = "" }},
		{"zero delay", func(d *Definition) { d.Cadence.DelayMs = 0 }},
		{"zero damage", func(d *Definition) { d.Damage.Base = 0 }},
		{"crit chance over 1", func(d *Definition) { d.Damage.Crit.Chance = 1.5 }},
		{"zero pool", func(d *Definition) { d.PoolSize = 0 }},
		{"zero max level", func(d *Definition) { d.MaxLevel = 0; d.Levels = nil }},
		{"unknown targeting", func(d *Definition) { d.Targeting = "random" }},
		{"missing targeting", func(d *Definition) { d.Targeting = "" }},
		{"level delta out of range", func(d *Definition) {
			d.Levels = map[int]LevelDelta{7: {DamageBaseMult: f32(2)}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid()
			tt.mutate(def)
			if err := def.Validate(); !errors.Is(err, ErrInvalidDefinition) {
				t.Errorf("Validate() error = %v, want ErrInvalidDefinition", err)
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Validate() on valid definition = %v", err)
	}
}

func TestArchetypeExactlyOneConfig(t *testing.T) {
	def := testProjectileDef("w", 600, 480)

	// kind と設定の不一致
	def.Archetype = Archetype{Kind: KindSlash, Chain: &ChainArchetype{MaxHops: 1, HopRange: 10}}
	if err := def.Validate(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("mismatched config error = %v, want ErrInvalidDefinition", err)
	}

	// 設定が2つ
	def.Archetype = Archetype{
		Kind:  KindSlash,
		Slash: &SlashArchetype{TimingMs: 100},
		Chain: &ChainArchetype{MaxHops: 1, HopRange: 10},
	}
	if err := def.Validate(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("double config error = %v, want ErrInvalidDefinition", err)
	}

	// projectile は追加設定なしで有効
	def.Archetype = Archetype{Kind: KindProjectile}
	if err := def.Validate(); err != nil {
		t.Errorf("bare projectile archetype error = %v", err)
	}

	def.Archetype = Archetype{Kind: "warp"}
	if err := def.Validate(); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("unknown kind error = %v, want ErrInvalidDefinition", err)
	}
}

func TestNewLibraryRejectsDuplicates(t *testing.T) {
	_, err := NewLibrary("test", []*Definition{
		testProjectileDef("w", 600, 480),
		testProjectileDef("w", 700, 480),
	})
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("NewLibrary duplicate error = %v, want ErrInvalidDefinition", err)
	}
}
