// Package view renders the HTML landing page and the store list fragment
// pushed over server-sent events.
package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/msomdec/store-rating/internal/domain"
	"github.com/msomdec/store-rating/internal/service"
)

// StoreListID is the element the store search fragment is patched into.
const StoreListID = "store-list"

// HomePage renders the landing page. user is nil for anonymous visitors.
func HomePage(user *domain.User) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>Store Rating</title>`)
		b.WriteString(`<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.5/bundles/datastar.js"></script>`)
		b.WriteString(`</head><body><main>`)
		b.WriteString(`<h1>Store Rating</h1>`)

		if user == nil {
			b.WriteString(`<p>Sign in to browse and rate stores.</p>`)
		} else {
			fmt.Fprintf(&b, `<p>Signed in as <strong>%s</strong> (%s).</p>`,
				templ.EscapeString(user.Name), templ.EscapeString(roleLabel(user.Role)))
			b.WriteString(`<div data-signals="{search: ''}">`)
			b.WriteString(`<input type="search" placeholder="Search stores" data-bind-search `)
			b.WriteString(`data-on-input__debounce.300ms="@get('/api/stores/search')">`)
			fmt.Fprintf(&b, `<table><thead><tr><th>Store</th><th>Address</th><th>Average</th><th>Ratings</th><th>Yours</th></tr></thead><tbody id="%s" data-on-load="@get('/api/stores/search')"></tbody></table>`, StoreListID)
			b.WriteString(`</div>`)
		}

		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// StoreRows renders one table row per store.
func StoreRows(stores []service.StoreView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		if len(stores) == 0 {
			b.WriteString(`<tr><td colspan="5">No stores found.</td></tr>`)
		}
		for _, s := range stores {
			yours := "-"
			if s.CallerRating != nil {
				yours = fmt.Sprint(s.CallerRating.Value)
			}
			fmt.Fprintf(&b, `<tr id="store-%d"><td>%s</td><td>%s</td><td>%.1f</td><td>%d</td><td>%s</td></tr>`,
				s.ID,
				templ.EscapeString(s.Name),
				templ.EscapeString(s.Address),
				s.Summary.Average,
				s.Summary.Count,
				yours,
			)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleSystemAdmin:
		return "administrator"
	case domain.RoleStoreOwner:
		return "store owner"
	}
	return "member"
}
