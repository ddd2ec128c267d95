package database

import (
	"html"
	"regexp"
	"sync"
)

// -----------------------------------------------------------------------------
// ERROR CAPTURE
// -----------------------------------------------------------------------------
// Sürücünün hata döndürmeden yalnızca uyarı/notice olarak bildirdiği mesajları
// yakalamak için kullanılır. Global bir handler yerine her Connection kendi
// ErrorCapture'ına sahiptir; Try/Catch çifti bu instance üzerinden çalışır.
//
// Kullanım:
//
//	capture.Try()
//	err := doSomethingThatMayWarn(capture.Handler())
//	if msg, ok := capture.Catch(); ok {
//	    log.Printf("uyarı: %s", msg)
//	}
//
// NOT: Reentrant değildir. Catch çağrılmadan ikinci bir Try, önceki
// yakalamayı sessizce sıfırlar.
// -----------------------------------------------------------------------------

// htmlTagPattern, sadece bilinen inline etiketleri tanır; "a<b and c>d" gibi
// düz metin dokunulmadan kalır.
var htmlTagPattern = regexp.MustCompile(`</?(?i:a|b|br|code|em|font|i|p|pre|span|strong|tt)(?:\s+[a-zA-Z-]+="[^"<>]*")*\s*/?>`)

// ErrorCapture, tek slotluk uyarı yakalayıcı.
type ErrorCapture struct {
	mu        sync.Mutex
	installed bool
	message   *string
}

// NewErrorCapture, boş bir ErrorCapture oluşturur.
func NewErrorCapture() *ErrorCapture {
	return &ErrorCapture{}
}

// Try, yakalamayı başlatır ve slotu temizler.
func (c *ErrorCapture) Try() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installed = true
	c.message = nil
}

// Report, bir uyarı mesajını kaydeder. Yalnızca Try ile Catch arasındaki ilk
// mesaj tutulur; sonraki mesajlar ve Try dışındaki çağrılar yok sayılır.
// Mesaj HTML işaretlemesi içeriyorsa etiketler temizlenir ve entity'ler
// çözülür; düz metin olduğu gibi saklanır.
func (c *ErrorCapture) Report(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.installed {
		return
	}
	c.installed = false

	if htmlTagPattern.MatchString(message) {
		message = htmlTagPattern.ReplaceAllString(message, "")
		message = html.UnescapeString(message)
	}
	c.message = &message
}

// Handler, Report'u fonksiyon olarak döndürür (callback bekleyen API'ler için).
func (c *ErrorCapture) Handler() func(string) {
	return c.Report
}

// Catch, yakalamayı sonlandırır ve yakalanan mesajı döndürür.
//
// Döndürür:
//   - string: Yakalanan mesaj (yoksa boş)
//   - bool: Mesaj yakalandıysa true
func (c *ErrorCapture) Catch() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installed = false
	if c.message == nil {
		return "", false
	}
	msg := *c.message
	c.message = nil
	return msg, true
}
