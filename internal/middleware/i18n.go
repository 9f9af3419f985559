// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/repuestos-py/marketplace/internal/i18n"
)

var supportedLanguages = []language.Tag{
	language.Spanish, // first entry is the fallback
	language.English,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// I18nMiddleware resolves Accept-Language ("es-PY,es;q=0.9,en;q=0.8") to one
// of the bundled locales and stores it under "lang".
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", resolveLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func resolveLanguage(header string) string {
	if header == "" {
		return i18n.DefaultLanguage()
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.DefaultLanguage()
	}

	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return i18n.DefaultLanguage()
	}
	base, _ := supportedLanguages[index].Base()
	return base.String()
}
