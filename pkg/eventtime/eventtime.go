// Package eventtime etkinlik saatleri için sabit UTC+2 yerel saat sağlar.
// Tüm etkinlik tarihleri bu ofsette "naive" olarak saklanır; karşılaştırmalar
// zone aritmetiği olmadan doğrudan yapılır. Sunucunun yerel saat dilimi
// hiçbir hesaplamada kullanılmaz.
package eventtime

import "time"

// OffsetHours etkinliklerin sabit yerel ofseti (UTC+2).
const OffsetHours = 2

// Clock "şimdi" kaynağını soyutlar; testlerde sabit saat enjekte edilir.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return Now() }

// System gerçek saat ile çalışan Clock döndürür.
func System() Clock { return systemClock{} }

// Fixed her zaman t döndüren Clock (testler için).
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }

// Now UTC+2 ofsetindeki güncel duvar saatini naive (UTC işaretli ama
// ofseti uygulanmış) olarak döndürür. Veritabanındaki naive tarihlerle
// doğrudan karşılaştırılabilir.
func Now() time.Time {
	return time.Now().UTC().Add(OffsetHours * time.Hour)
}

// HoursSince t'den bu yana geçen saat sayısı (kesirli).
func HoursSince(now, t time.Time) float64 {
	return now.Sub(t).Hours()
}
