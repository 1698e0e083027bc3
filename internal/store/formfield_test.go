package store

import "testing"

func TestMachineName(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Phone Number", "phone_number"},
		{"Öğrenci Şube", "ogrenci_sube"},
		{"Acil Durum Kişisi", "acil_durum_kisisi"},
		{"Çağrı Grubu", "cagri_grubu"},
		{"T.C. No (11 hane)", "t_c__no__11_hane_"},
		{"already_safe", "already_safe"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := MachineName(tt.label); got != tt.want {
				t.Errorf("MachineName(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}
