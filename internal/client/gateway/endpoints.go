package gateway

import (
	"net/url"

	"github.com/atinyakov/travelsite/internal/models"
)

const (
	apiPrefix = "/api"

	pathLogin         = "/auth/login"
	pathEnquiries     = "/enquiries"
	pathEnquiryExport = "/enquiries/export"
	pathHomeImages    = "/home-images"
	pathAbout         = "/about"
	pathAboutVideo    = "/about/video"
	pathUsers         = "/users"
)

// packageEndpoints holds the route templates of one package collection.
type packageEndpoints struct {
	collection string
}

func (e packageEndpoints) list() string { return e.collection }

func (e packageEndpoints) item(id string) string { return itemPath(e.collection, id) }

func (e packageEndpoints) image(id string) string { return e.item(id) + "/image" }

// packageRoutes maps every PackageKind to its collection; adding a kind
// without a route is caught by TestPackageRoutesCoverAllKinds.
var packageRoutes = map[models.PackageKind]packageEndpoints{
	models.Standard:    {collection: "/packages"},
	models.HighSelling: {collection: "/high-selling-packages"},
}

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}
