package email

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dalchat-backend/internal/keyValue"

	"github.com/go-chi/chi/v5"
)

type confirmLink struct {
	Email string
	Link  string
}

const confirmLinksKey = "email_confirmations"

// confirmationPageListener serves the pending confirmation links on localhost
// so self-contained installs can finish registrations without SMTP.
func confirmationPageListener() {
	r := chi.NewRouter()

	r.HandleFunc("/emails_to_confirm", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		result, err := keyValue.Get(confirmLinksKey)
		if err != nil {
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		var html []byte
		if result == "" {
			html = fmt.Append(html, "<h1>No emails to confirm</h1>\n")
		} else {
			var links []confirmLink
			if err := json.Unmarshal([]byte(result), &links); err != nil {
				http.Error(w, "", http.StatusInternalServerError)
				return
			}

			html = fmt.Append(html, "<h1>Emails waiting to be confirmed:</h1>")
			for _, link := range links {
				html = fmt.Appendf(html, `<p><a href="%s">%s</a></p>`, link.Link, link.Email)
			}
		}

		if _, err := w.Write(html); err != nil {
			fmt.Println(err)
		}
	})

	localAddress := "127.0.0.1:3010"
	fmt.Printf("View email confirmation links on http://%s/emails_to_confirm\n", localAddress)
	if err := http.ListenAndServe(localAddress, r); err != nil {
		fmt.Println(err)
	}
}

func storeConfirmLink(email string, link string) error {
	result, err := keyValue.Get(confirmLinksKey)
	if err != nil {
		return err
	}

	var links []confirmLink
	if result != "" {
		if err := json.Unmarshal([]byte(result), &links); err != nil {
			return err
		}
	}

	links = append(links, confirmLink{email, link})

	jsonBytes, err := json.Marshal(links)
	if err != nil {
		return err
	}

	return keyValue.Set(confirmLinksKey, string(jsonBytes), time.Hour)
}
