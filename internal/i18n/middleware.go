package i18n

import "net/http"

// LangCookie names the cookie that overrides the configured language.
const LangCookie = "tutor_lang"

// Middleware injects a localizer into every request context. The language is
// taken from the lang cookie, then Accept-Language, then lang.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var prefs []string
			if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
				prefs = append(prefs, c.Value)
			}
			if al := r.Header.Get("Accept-Language"); al != "" {
				prefs = append(prefs, al)
			}
			prefs = append(prefs, lang)
			ctx := WithLocalizer(r.Context(), NewLocalizer(prefs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
