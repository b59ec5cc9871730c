package hrctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/hrpayroll/pkg/apiclient"
	"github.com/dmitrymomot/hrpayroll/pkg/router"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// tabular values know how to print themselves as a table.
type tabular interface {
	header() []string
	rows() [][]string
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	t, ok := v.(tabular)
	if !ok {
		_, err := fmt.Fprintln(w, v)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if h := t.header(); len(h) > 0 {
		fmt.Fprintln(tw, strings.Join(h, "\t"))
	}
	for _, row := range t.rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

type message struct {
	Message string `json:"message" yaml:"message"`
}

func (m message) String() string { return m.Message }

type userView struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Role     string `json:"role,omitempty" yaml:"role,omitempty"`
	Active   bool   `json:"is_active" yaml:"is_active"`
}

func newUserView(u *apiclient.User) userView {
	if u == nil {
		return userView{}
	}
	return userView{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.IsActive,
	}
}

func (u userView) header() []string { return []string{"FIELD", "VALUE"} }

func (u userView) rows() [][]string {
	return [][]string{
		{"id", strconv.Itoa(u.ID)},
		{"name", u.Name},
		{"username", u.Username},
		{"email", u.Email},
		{"role", u.Role},
		{"active", strconv.FormatBool(u.Active)},
	}
}

type navView struct {
	Path         string `json:"path" yaml:"path"`
	Outcome      string `json:"outcome" yaml:"outcome"`
	Route        string `json:"route" yaml:"route"`
	Title        string `json:"title" yaml:"title"`
	RequiresAuth bool   `json:"requires_auth" yaml:"requires_auth"`
	Location     string `json:"location,omitempty" yaml:"location,omitempty"`
}

func newNavView(path string, d router.Decision) navView {
	v := navView{
		Path:         path,
		Outcome:      d.Outcome.String(),
		Route:        d.Route.Name,
		Title:        d.Title,
		RequiresAuth: d.RequiresAuth,
	}
	if d.Outcome == router.Redirect {
		v.Location = d.Location.FullPath()
	}
	return v
}

func (n navView) header() []string { return []string{"FIELD", "VALUE"} }

func (n navView) rows() [][]string {
	rows := [][]string{
		{"path", n.Path},
		{"outcome", n.Outcome},
		{"route", n.Route},
		{"title", n.Title},
		{"requires_auth", strconv.FormatBool(n.RequiresAuth)},
	}
	if n.Location != "" {
		rows = append(rows, []string{"location", n.Location})
	}
	return rows
}

type routeView struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Path         string `json:"path" yaml:"path"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Layout       string `json:"layout,omitempty" yaml:"layout,omitempty"`
	RequiresAuth bool   `json:"requires_auth" yaml:"requires_auth"`
	Redirect     string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

type routeList []routeView

func newRouteList(rt *router.Router) routeList {
	var out routeList
	for _, r := range rt.Routes() {
		path := r.Path
		if r.Name != "" {
			_, path, _ = rt.Route(r.Name)
		}
		out = append(out, routeView{
			Name:         r.Name,
			Path:         path,
			Title:        r.Meta.Title,
			Layout:       r.Meta.Layout,
			RequiresAuth: r.Meta.RequiresAuth,
			Redirect:     r.Redirect,
		})
	}
	return out
}

func (l routeList) header() []string { return []string{"NAME", "PATH", "TITLE", "AUTH", "REDIRECT"} }

func (l routeList) rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{r.Name, r.Path, r.Title, strconv.FormatBool(r.RequiresAuth), r.Redirect})
	}
	return rows
}
