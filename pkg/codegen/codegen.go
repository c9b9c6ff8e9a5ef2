// Package codegen katılım ve etkinlik kodları için rastgele üreticiler.
package codegen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet karıştırılması kolay karakterler (O, 0, I, 1, L) çıkarılmış
// büyük harf + rakam kümesi. Kodlar telefonla okunur; bu küme sabittir,
// değiştirmek mevcut kodlarla çakışma riskini artırmaz ama tutarlılığı bozar.
const Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// randomIndex [0,n) aralığında indeks üretir. 256'yı tam bölmeyen kümelerde
// mod alma küçük indekslere yanlılık yaratır; aralık dışına düşen baytlar
// atılıp yeniden okunur.
func randomIndex(n int) (int, error) {
	limit := 256 - 256%n
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("rastgele bayt okunamadı: %w", err)
		}
		if int(b[0]) < limit {
			return int(b[0]) % n, nil
		}
	}
}

func randomString(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := randomIndex(len(Alphabet))
		if err != nil {
			return "", err
		}
		sb.WriteByte(Alphabet[idx])
	}
	return sb.String(), nil
}

// AttendanceCode PREFIX-XXXX biçiminde katılım kodu üretir. Prefix etkinlik
// kodundan gelir ve büyük harfe çevrilir.
func AttendanceCode(prefix string) (string, error) {
	suffix, err := randomString(4)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(prefix)) + "-" + suffix, nil
}

// EventCode n karakterlik etkinlik kodu üretir.
func EventCode(n int) (string, error) {
	if n <= 0 {
		n = 6
	}
	return randomString(n)
}

// Pin 6 haneli sayısal check-in PIN'i üretir. Baştaki sıfırlar geçerlidir;
// PIN her zaman string olarak taşınır.
func Pin() (string, error) {
	digits := make([]byte, 6)
	for i := range digits {
		d, err := randomIndex(10)
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(d)
	}
	return string(digits), nil
}
