package handlers

import (
	"html/template"
	"net/http"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
)

// routeURLs maps named routes used in form data to their paths
var routeURLs = map[string]string{
	"users":            "/users",
	"users.create":     "/users/create",
	"users.update":     "/users/update",
	"users.importData": "/users/importData",
}

// pageData is the data passed to the HTML shell templates
type pageData struct {
	Title      string
	FlashLevel FlashLevel
	Flash      string
	Form       *models.FormData
	ActionURL  string
	AvatarURL  string
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{if .Flash}}<div class="alert alert-{{.FlashLevel}}">{{.Flash}}</div>{{end}}
{{template "content" .}}
</body>
</html>{{end}}`

var pageTemplates = map[string]*template.Template{
	"list": template.Must(template.New("list").Parse(layoutTemplate + `{{define "content"}}
<h1>Users</h1>
<p><a href="/users/add">Add</a> <a href="/users/import">Import</a></p>
<table id="users-table" data-source="/users" data-columns="image,name,email,role,created_at,updated_at">
<thead><tr><th>Image</th><th>Name</th><th>Email</th><th>Role</th><th>Created</th><th>Updated</th><th></th></tr></thead>
</table>
{{end}}`)),
	"form": template.Must(template.New("form").Parse(layoutTemplate + `{{define "content"}}
<h1>{{.Title}}</h1>
<form method="post" action="{{.ActionURL}}" enctype="multipart/form-data">
{{with .Form.User}}{{if .ID}}<input type="hidden" name="id" value="{{.ID}}">{{end}}
<label>Name <input type="text" name="name" value="{{.Name}}"></label>
<label>Email <input type="email" name="email" value="{{.Email}}"></label>
<label>Password <input type="password" name="password"></label>{{end}}
<label>Role <select name="role">{{$role := .Form.User.Role}}{{range .Form.Roles}}
<option value="{{.ID}}"{{if eq .ID $role}} selected{{end}}>{{.DisplayName}}</option>{{end}}
</select></label>
<img src="{{.AvatarURL}}" alt="avatar" width="64">
<label>Image <input type="file" name="image" accept="image/*"></label>
{{if eq .Form.PageType "edit"}}<label><input type="checkbox" name="image_delete" value="1"> Delete image</label>{{end}}
<button type="submit">{{.Form.ButtonText}}</button>
</form>
{{end}}`)),
	"import": template.Must(template.New("import").Parse(layoutTemplate + `{{define "content"}}
<h1>{{.Title}}</h1>
<p>Columns: email, first_name, last_name, role, password</p>
<form method="post" action="{{.ActionURL}}" enctype="multipart/form-data">
<input type="file" name="import" accept=".csv">
<button type="submit">{{.Form.ButtonText}}</button>
</form>
{{end}}`)),
}

// render writes an HTML shell page, consuming any pending flash message
func (h *BaseHandler) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	data.FlashLevel, data.Flash = PopFlash(w, r)

	tmpl, ok := pageTemplates[name]
	if !ok {
		h.Logger.Error("unknown page template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		h.Logger.Error("failed to render page", zap.String("template", name), zap.Error(err))
	}
}
