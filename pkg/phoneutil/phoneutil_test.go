package phoneutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		region  string
		want    string
		wantErr bool
	}{
		{name: "uluslararası biçim", phone: "+201012345678", region: "EG", want: "+201012345678"},
		{name: "yerel biçim varsayılan bölgeyle", phone: "01012345678", region: "EG", want: "+201012345678"},
		{name: "boşluklu giriş", phone: " +20 101 234 5678 ", region: "EG", want: "+201012345678"},
		{name: "bölge boşsa EG varsayılır", phone: "01012345678", region: "", want: "+201012345678"},
		{name: "türk numarası kendi bölgesiyle", phone: "05321234567", region: "TR", want: "+905321234567"},
		{name: "çok kısa", phone: "12345", region: "EG", wantErr: true},
		{name: "harf içeren", phone: "telefon yok", region: "EG", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.phone, tt.region)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastDigits(t *testing.T) {
	assert.Equal(t, "1012345678", LastDigits("+201012345678", 10))
	assert.Equal(t, "1012345678", LastDigits("+20 101 234 56-78", 10))
	assert.Equal(t, "123", LastDigits("123", 10)) // kısa numara olduğu gibi döner
	assert.Equal(t, "", LastDigits("rakam yok", 10))
}
