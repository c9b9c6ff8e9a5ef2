// Package phoneutil telefon numaralarını veri giriş sınırında tek bir
// kanonik biçime (E.164) indirger. Mükerrer kontrolleri sonrasında ham
// string değil, bu kanonik değer üzerinden yapılır.
package phoneutil

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Normalize telefonu E.164 biçimine çevirir (örn. +201012345678).
// Ülke kodu verilmemişse defaultRegion varsayılır.
func Normalize(phone, defaultRegion string) (string, error) {
	phone = strings.TrimSpace(phone)
	if defaultRegion == "" {
		defaultRegion = "EG"
	}

	num, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", phonenumbers.ErrNotANumber
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// LastDigits numaranın son n rakamını döndürür; eski kayıtlarla gevşek
// eşleşme (portal telefon araması) için kullanılır.
func LastDigits(phone string, n int) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) <= n {
		return digits
	}
	return digits[len(digits)-n:]
}
