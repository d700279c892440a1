package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/partner-admin/internal/auth"
	"github.com/diewo77/partner-admin/internal/db"
	"github.com/diewo77/partner-admin/internal/gate"
	"github.com/diewo77/partner-admin/internal/handlers"
	"github.com/diewo77/partner-admin/internal/middleware"
	"github.com/diewo77/partner-admin/internal/policy"
	"github.com/diewo77/partner-admin/internal/services"
	"github.com/diewo77/partner-admin/internal/view"
)

// App is the root http.Handler: the route table plus the global middleware
// chain (session parsing, principal resolution, logging, metrics).
type App struct {
	mux   *http.ServeMux
	db    *gorm.DB
	authz *policy.AuthGate
	log   *zap.SugaredLogger
	chain http.Handler
}

// NewApp wires handlers, services and the authorization gate.
func NewApp(gdb *gorm.DB, funcs db.StoredFuncs, log *zap.SugaredLogger) *App {
	app := &App{
		mux:   http.NewServeMux(),
		db:    gdb,
		authz: policy.NewAuthGate(),
		log:   log,
	}
	view.Authz = app.authz
	app.setupRoutes(funcs)
	app.chain = auth.Middleware(
		policy.PrincipalMiddleware(gdb, log)(
			middleware.Logging(log)(
				middleware.Metrics(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.chain.ServeHTTP(w, r)
}

// setupRoutes configures the legacy route table. Each protected route is
// guarded by the resource:action it exercises; a denial never reaches the
// handler.
func (a *App) setupRoutes(funcs db.StoredFuncs) {
	requestSvc := services.NewRequestService(a.db, funcs)
	supplySvc := services.NewSupplyService(a.db)

	home := handlers.NewHomeHandler(a.log)
	ah := handlers.NewAuthHandler(a.db, a.log)
	ph := handlers.NewPartnerHandler(a.db, funcs, a.log)
	prh := handlers.NewProductHandler(a.db, a.log)
	mh := handlers.NewMaterialHandler(a.db, a.log)
	rh := handlers.NewRequestHandler(a.db, requestSvc, a.log)
	sh := handlers.NewSupplyHandler(a.db, supplySvc, a.log)
	ch := handlers.NewCompositionHandler(a.db, funcs, a.authz, a.log)
	uh := handlers.NewUserHandler(a.db, a.log)
	uph := handlers.NewUploadHandler(a.db, a.log)

	// Public
	a.mux.HandleFunc("GET /", home.Index)
	a.mux.HandleFunc("GET /login", ah.LoginForm)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /register", ah.RegisterForm)
	a.mux.HandleFunc("POST /register", ah.Register)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.Handle("GET /metrics", promhttp.Handler())

	// Partners
	a.mux.Handle("GET /partners",
		a.require(policy.ResourcePartner, gate.ActionList)(http.HandlerFunc(ph.List)))
	a.mux.Handle("POST /add_partner",
		a.require(policy.ResourcePartner, gate.ActionCreate)(http.HandlerFunc(ph.Create)))
	a.mux.Handle("POST /delete_partner",
		a.require(policy.ResourcePartner, gate.ActionDelete)(http.HandlerFunc(ph.Delete)))
	a.mux.Handle("GET /partner_requests/{id}",
		a.require(policy.ResourcePartner, gate.ActionView)(http.HandlerFunc(ph.Requests)))

	// Products
	a.mux.Handle("GET /products",
		a.require(policy.ResourceProduct, gate.ActionList)(http.HandlerFunc(prh.List)))
	a.mux.Handle("GET /add_product",
		a.require(policy.ResourceProduct, gate.ActionCreate)(http.HandlerFunc(prh.AddForm)))
	a.mux.Handle("POST /add_product",
		a.require(policy.ResourceProduct, gate.ActionCreate)(http.HandlerFunc(prh.Add)))
	a.mux.Handle("GET /edit_product/{id}",
		a.require(policy.ResourceProduct, gate.ActionUpdate)(http.HandlerFunc(prh.EditForm)))
	a.mux.Handle("POST /edit_product/{id}",
		a.require(policy.ResourceProduct, gate.ActionUpdate)(http.HandlerFunc(prh.Edit)))
	a.mux.Handle("POST /delete_product",
		a.require(policy.ResourceProduct, gate.ActionDelete)(http.HandlerFunc(prh.Delete)))

	// Materials
	a.mux.Handle("GET /materials",
		a.require(policy.ResourceMaterial, gate.ActionList)(http.HandlerFunc(mh.List)))

	// Supplies
	a.mux.Handle("GET /supplies",
		a.require(policy.ResourceSupply, gate.ActionList)(http.HandlerFunc(sh.List)))
	a.mux.Handle("POST /supplies",
		a.require(policy.ResourceSupply, gate.ActionCreate)(http.HandlerFunc(sh.Create)))

	// Requests
	a.mux.Handle("GET /requests",
		a.require(policy.ResourceRequest, gate.ActionList)(http.HandlerFunc(rh.List)))
	a.mux.Handle("GET /my_requests",
		a.require(policy.ResourceRequestOwn, gate.ActionList)(http.HandlerFunc(rh.My)))
	a.mux.Handle("GET /add_request",
		a.require(policy.ResourceRequest, gate.ActionCreate)(http.HandlerFunc(rh.AddForm)))
	a.mux.Handle("POST /add_request",
		a.require(policy.ResourceRequest, gate.ActionCreate)(http.HandlerFunc(rh.Add)))
	a.mux.Handle("GET /edit_request/{id}",
		a.require(policy.ResourceRequest, gate.ActionUpdate)(http.HandlerFunc(rh.EditForm)))
	a.mux.Handle("POST /edit_request/{id}",
		a.require(policy.ResourceRequest, gate.ActionUpdate)(http.HandlerFunc(rh.Edit)))

	// Composition and the required-material calculator. The POST compute
	// is checked inside the handler (calc is narrower than list).
	a.mux.Handle("GET /calc",
		a.require(policy.ResourceComposition, gate.ActionList)(http.HandlerFunc(ch.CalcPage)))
	a.mux.Handle("POST /calc",
		a.require(policy.ResourceComposition, gate.ActionList)(http.HandlerFunc(ch.Calc)))
	a.mux.Handle("GET /add_product_material",
		a.require(policy.ResourceComposition, gate.ActionCreate)(http.HandlerFunc(ch.AddForm)))
	a.mux.Handle("POST /add_product_material",
		a.require(policy.ResourceComposition, gate.ActionCreate)(http.HandlerFunc(ch.Add)))
	a.mux.Handle("GET /edit_product_material/{pid}/{mid}",
		a.require(policy.ResourceComposition, gate.ActionUpdate)(http.HandlerFunc(ch.EditForm)))
	a.mux.Handle("POST /edit_product_material/{pid}/{mid}",
		a.require(policy.ResourceComposition, gate.ActionUpdate)(http.HandlerFunc(ch.Edit)))
	a.mux.Handle("POST /delete_product_material",
		a.require(policy.ResourceComposition, gate.ActionDelete)(http.HandlerFunc(ch.Delete)))

	// CSV import
	a.mux.Handle("GET /upload",
		a.require(policy.ResourcePartner, gate.ActionCreate)(http.HandlerFunc(uph.Form)))
	a.mux.Handle("POST /upload",
		a.require(policy.ResourcePartner, gate.ActionCreate)(http.HandlerFunc(uph.Upload)))

	// Users
	a.mux.Handle("GET /users",
		a.require(policy.ResourceUser, gate.ActionList)(http.HandlerFunc(uh.List)))
	a.mux.Handle("POST /add_user",
		a.require(policy.ResourceUser, gate.ActionCreate)(http.HandlerFunc(uh.Create)))

	// Static files
	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

func (a *App) require(resource string, action gate.Action) func(http.Handler) http.Handler {
	return a.authz.Require(resource, action)
}
