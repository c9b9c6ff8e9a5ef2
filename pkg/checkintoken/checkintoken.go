// Package checkintoken check-in konsolunun durumsuz oturum anahtarını üretir
// ve doğrular. Anahtar, etkinlik kodunu ve o anki PIN'in bcrypt özetini
// taşır: PIN değiştiğinde veya pasife alındığında eldeki bütün anahtarlar
// kendiliğinden geçersizleşir, sunucuda oturum tablosu tutulmaz.
package checkintoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("geçersiz veya süresi dolmuş oturum anahtarı")
	ErrNoSecret     = errors.New("oturum anahtarı gizli değeri tanımlı değil")
)

// Claims check-in oturumunun taşıdığı alanlar.
type Claims struct {
	EventCode string `json:"event_code"`
	PinHash   string `json:"pin_hash"`
	jwt.RegisteredClaims
}

// Issue verilen etkinlik kodu ve PIN özeti için imzalı anahtar üretir.
func Issue(secret, eventCode, pinHash string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	claims := Claims{
		EventCode: eventCode,
		PinHash:   pinHash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse anahtarı doğrular ve içeriğini döndürür. İmza ve süre dışındaki
// kontroller (PIN hâlâ aynı mı, etkinlik hâlâ check-in'e açık mı)
// çağıranın sorumluluğundadır.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.EventCode == "" || claims.PinHash == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
