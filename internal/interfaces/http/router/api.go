package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rental/backoffice/internal/interfaces/http/handler"
)

// API holds the handlers served under the versioned prefix
type API struct {
	Auth       *handler.AuthHandler
	Gate       *handler.GateHandler
	Catalog    *handler.CatalogHandler
	Quotations *handler.QuotationHandler
	Drafts     *handler.DraftHandler

	// RequireSession guards every group except auth and gate
	RequireSession gin.HandlerFunc
	// LoginLimit throttles login attempts; nil disables it
	LoginLimit gin.HandlerFunc
}

// Groups returns the domain groups of the back-office API
func (a API) Groups() []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", a.LoginLimit, a.Auth.Login)
	auth.POST("/logout", a.Auth.Logout)
	auth.GET("/me", a.Auth.Me)

	gate := NewDomainGroup("gate", "/gate")
	gate.GET("", a.Gate.Check)

	equipment := NewDomainGroup("equipment", "/equipment").Use(a.RequireSession)
	equipment.GET("", a.Catalog.ListEquipment)
	equipment.POST("", a.Catalog.CreateEquipment)
	equipment.GET("/category/:categoryId", a.Catalog.ListEquipmentByCategory)
	equipment.GET("/:id", a.Catalog.GetEquipment)
	equipment.PUT("/:id", a.Catalog.UpdateEquipment)
	equipment.DELETE("/:id", a.Catalog.DeleteEquipment)

	categories := equipment.Group("categories", "/categories")
	categories.GET("", a.Catalog.ListCategories)
	categories.POST("", a.Catalog.CreateCategory)
	categories.GET("/:id", a.Catalog.GetCategory)
	categories.PUT("/:id", a.Catalog.UpdateCategory)
	categories.DELETE("/:id", a.Catalog.DeleteCategory)

	bundles := NewDomainGroup("bundles", "/bundles").Use(a.RequireSession)
	bundles.GET("", a.Catalog.ListBundles)
	bundles.POST("", a.Catalog.CreateBundle)
	bundles.POST("/price-preview", a.Catalog.PreviewBundlePrice)
	bundles.GET("/:id", a.Catalog.GetBundle)
	bundles.PUT("/:id", a.Catalog.UpdateBundle)
	bundles.DELETE("/:id", a.Catalog.DeleteBundle)

	quotations := NewDomainGroup("quotations", "/quotations").Use(a.RequireSession)
	quotations.GET("", a.Quotations.List)
	quotations.GET("/:id", a.Quotations.Get)
	quotations.DELETE("/:id", a.Quotations.Delete)
	quotations.PUT("/:id/status", a.Quotations.UpdateStatus)
	quotations.GET("/:id/export/pdf", a.Quotations.ExportPDF)
	quotations.GET("/:id/export/excel", a.Quotations.ExportExcel)

	drafts := NewDomainGroup("drafts", "/drafts").Use(a.RequireSession)
	drafts.POST("", a.Drafts.Create)
	drafts.GET("/:draftId", a.Drafts.Get)
	drafts.DELETE("/:draftId", a.Drafts.Discard)
	drafts.PUT("/:draftId/header", a.Drafts.SetHeader)
	drafts.PUT("/:draftId/rates", a.Drafts.SetRates)
	drafts.PUT("/:draftId/selection", a.Drafts.Select)
	drafts.POST("/:draftId/sections", a.Drafts.AddSection)
	drafts.DELETE("/:draftId/sections/:handle", a.Drafts.RemoveSection)
	drafts.POST("/:draftId/groups", a.Drafts.AddGroup)
	drafts.DELETE("/:draftId/groups/:handle", a.Drafts.RemoveGroup)
	drafts.POST("/:draftId/items", a.Drafts.AddItem)
	drafts.DELETE("/:draftId/items/:handle", a.Drafts.RemoveItem)
	drafts.POST("/:draftId/submit", a.Drafts.Submit)

	return []RouteRegistrar{auth, gate, equipment, bundles, quotations, drafts}
}
