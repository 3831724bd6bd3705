package vision

import "testing"

func TestIsSkinTone(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"Typical skin", 160, 120, 90, true},
		{"Light skin", 220, 170, 140, true},
		{"Dark uniform", 30, 30, 30, false},
		{"Red cloth", 200, 40, 40, false},
		{"Green dominant", 100, 180, 60, false},
		{"Blue dominant", 100, 110, 200, false},
		{"Low red", 90, 60, 40, false},
		{"Too uniform", 120, 110, 112, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSkinTone(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("IsSkinTone(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsFabricLike(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"Near white", 255, 255, 255, true},
		{"Near gray", 128, 128, 128, true},
		{"Blue dominant", 0, 180, 255, true},
		{"Surgical blue", 80, 120, 180, true},
		{"Near black", 30, 20, 10, true},
		{"Skin tone", 160, 120, 90, false},
		{"Bright red", 240, 30, 30, false},
		{"Orange", 255, 150, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFabricLike(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("IsFabricLike(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsFireColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"Orange flame", 255, 150, 50, true},
		{"Deep red", 190, 30, 30, true},
		{"Yellow flame", 230, 210, 100, true},
		{"Bright yellow", 250, 240, 50, true},
		{"Intense warm", 210, 150, 120, true}, // r+g=360, b<150, r>g
		{"White", 255, 255, 255, false},
		{"Gray", 128, 128, 128, false},
		{"Sky blue", 100, 160, 230, false},
		{"Dark", 40, 20, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFireColor(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("IsFireColor(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsSmokeColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"Mid gray, zero variation", 140, 140, 140, true},
		{"Light smoke", 180, 175, 170, true},
		{"Dark smoke", 100, 95, 105, true},
		{"Too dark", 30, 30, 30, false},
		{"Saturated orange", 255, 150, 50, false},
		{"Saturated blue", 40, 80, 220, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSmokeColor(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("IsSmokeColor(%d, %d, %d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func BenchmarkIsSkinTone(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IsSkinTone(160, 120, 90)
	}
}

func BenchmarkIsSmokeColor(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IsSmokeColor(140, 140, 140)
	}
}
