package page

import "net/http"

type ErrorView struct {
	Site    Site
	Status  int
	Title   string
	Message string
}

func (c *Composer) Error(site Site, status int) ErrorView {
	v := ErrorView{Site: site, Status: status}
	switch status {
	case http.StatusNotFound:
		v.Title = "Page not found"
		v.Message = "The page you are looking for does not exist or has been moved."
	default:
		v.Title = "Something went wrong"
		v.Message = "Please try again in a moment."
	}
	v.Site = site.WithPage(v.Title, "", nil, "")
	return v
}
