package router

import (
	"github.com/gin-gonic/gin"
	"github.com/microfinance/backend/internal/interfaces/http/handler"
	"github.com/microfinance/backend/internal/interfaces/http/middleware"
)

// multipartOverhead is added to the page size limit for form boundaries
// and part headers
const multipartOverhead = 64 << 10

// Handlers are the API handlers mounted by the router
type Handlers struct {
	Customers *handler.CustomerHandler
	Cards     *handler.IdentificationCardHandler
	Tasks     *handler.TaskHandler
	Documents *handler.DocumentHandler
	Health    *handler.HealthHandler
}

// Limits bounds request bodies
type Limits struct {
	MaxBodySize int64
	MaxPageSize int64
}

// CustomerRoutes builds /customers and everything owned by a customer
func CustomerRoutes(h Handlers, limits Limits) *DomainGroup {
	body := middleware.BodyLimit(limits.MaxBodySize)

	customers := NewDomainGroup("customers", "/customers")
	customers.POST("", body, h.Customers.Create)
	customers.GET("", h.Customers.List)
	customers.GET("/:id", h.Customers.Get)
	customers.PUT("/:id", body, h.Customers.Update)
	customers.POST("/:id/commands", body, h.Customers.ExecuteCommand)
	customers.GET("/:id/commands", h.Customers.ListCommands)
	customers.GET("/:id/actions", h.Customers.AvailableActions)

	customers.POST("/:id/identifications", body, h.Cards.Create)
	customers.GET("/:id/identifications", h.Cards.List)
	customers.GET("/:id/identifications/:number", h.Cards.Get)
	customers.PUT("/:id/identifications/:number", body, h.Cards.Update)
	customers.DELETE("/:id/identifications/:number", h.Cards.Delete)

	customers.GET("/:id/tasks", h.Tasks.ListForCustomer)
	customers.POST("/:id/tasks/:taskId", h.Tasks.AddToCustomer)
	customers.PUT("/:id/tasks/:taskId", body, h.Tasks.ExecuteForCustomer)
	customers.DELETE("/:id/tasks/:taskId", h.Tasks.RemoveFromCustomer)

	documents := customers.Group("documents", "/:id/documents")
	documents.POST("", body, h.Documents.Create)
	documents.GET("", h.Documents.List)
	documents.GET("/:docId", h.Documents.Get)
	documents.PUT("/:docId", body, h.Documents.Change)
	documents.DELETE("/:docId", h.Documents.Delete)
	documents.POST("/:docId/completed", body, h.Documents.Complete)
	documents.GET("/:docId/pages", h.Documents.ListPages)
	documents.GET("/:docId/pages/:page", h.Documents.GetPage)
	documents.POST("/:docId/pages/:page", middleware.BodyLimit(limits.MaxPageSize+multipartOverhead), h.Documents.AddPage)
	documents.DELETE("/:docId/pages/:page", h.Documents.DeletePage)

	return customers
}

// TaskRoutes builds the /tasks catalog
func TaskRoutes(h Handlers, limits Limits) *DomainGroup {
	body := middleware.BodyLimit(limits.MaxBodySize)

	tasks := NewDomainGroup("tasks", "/tasks")
	tasks.POST("", body, h.Tasks.CreateDefinition)
	tasks.GET("", h.Tasks.ListDefinitions)
	tasks.GET("/:id", h.Tasks.GetDefinition)
	tasks.PUT("/:id", body, h.Tasks.UpdateDefinition)
	return tasks
}

// healthRoutes mounts the health check on engine, outside authentication
func healthRoutes(engine *gin.Engine, h *handler.HealthHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/api/v1/health", h.Health)
}
