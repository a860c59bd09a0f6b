// Package azure - Azure component handler registration
package azure

import (
	"azure-bom-cost/clouds"
	"azure-bom-cost/clouds/azure/ai"
	"azure-bom-cost/clouds/azure/analytics"
	"azure-bom-cost/clouds/azure/compute"
	"azure-bom-cost/clouds/azure/database"
	"azure-bom-cost/clouds/azure/identity"
	"azure-bom-cost/clouds/azure/management"
	"azure-bom-cost/clouds/azure/messaging"
	"azure-bom-cost/clouds/azure/monitoring"
	"azure-bom-cost/clouds/azure/networking"
	"azure-bom-cost/clouds/azure/security"
	"azure-bom-cost/clouds/azure/serverless"
	"azure-bom-cost/clouds/azure/storage"
)

// Handlers returns one instance of every Azure handler
func Handlers() []clouds.Handler {
	return []clouds.Handler{
		// Compute
		compute.NewVMHandler(),
		compute.NewAppServiceHandler(),
		compute.NewAKSHandler(),

		// Database
		database.NewRedisHandler(),
		database.NewSQLHandler(),

		// AI
		ai.NewSearchHandler(),
		ai.NewOpenAIHandler(),

		// Security
		security.NewDefenderHandler(),
		security.NewKeyVaultHandler(),

		// Messaging
		messaging.NewEventHubHandler(),
		messaging.NewServiceBusHandler(),
		messaging.NewEventGridHandler(),

		// Serverless
		serverless.NewFunctionsHandler(),
		serverless.NewContainerAppsHandler(),

		// Storage
		storage.NewBlobHandler(),
		storage.NewQueueHandler(),
		storage.NewTableHandler(),
		storage.NewFileShareHandler(),
		storage.NewBackupHandler(),

		// Networking
		networking.NewBandwidthHandler(),
		networking.NewDNSHandler(),
		networking.NewFrontDoorHandler(),
		networking.NewAPIManagementHandler(),
		networking.NewLoadBalancerHandler(),
		networking.NewAppGatewayHandler(),
		networking.NewPrivateNetworkingHandler(),

		// Monitoring
		monitoring.NewLogAnalyticsHandler(),
		monitoring.NewAppInsightsHandler(),

		// Analytics
		analytics.NewDataFactoryHandler(),
		analytics.NewDatabricksHandler(),
		analytics.NewSynapseHandler(),
		analytics.NewFabricCapacityHandler(),
		analytics.NewOneLakeHandler(),

		// Identity
		identity.NewExternalIDHandler(),

		// Management
		management.NewDevOpsHandler(),
		management.NewGovernanceHandler(),
	}
}

// NewRegistry returns a registry holding every Azure handler
func NewRegistry() *clouds.Registry {
	r := clouds.NewRegistry()
	r.MustRegister(Handlers()...)
	return r
}

// SupportedComponentTypes returns all supported BOM component types, sorted
func SupportedComponentTypes() []string {
	return NewRegistry().Types()
}
