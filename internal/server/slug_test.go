package server

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Playa Renovada", "playa-renovada"},
		{"Año de Inmigración", "ano-de-inmigracion"},
		{"  ¡Gran fiesta!  ", "gran-fiesta"},
		{"Vivienda: precios 2024", "vivienda-precios-2024"},
		{"---", ""},
		{"El--niño", "el-nino"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
