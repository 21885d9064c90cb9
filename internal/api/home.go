package api

import "net/http"

func (s Server) getHome(w http.ResponseWriter, r *http.Request) error {
	return s.render(w, http.StatusOK, "home.html", s.newPageData(r, "sitekit", routeHome))
}
