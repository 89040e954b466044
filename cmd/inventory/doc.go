// Command inventory runs and administers the inventory service.
//
//	inventory serve                  # HTTP API (+ gRPC health when GRPC_PORT is set)
//	inventory migrate                # run pending migrations
//	inventory migrate:rollback
//	inventory migrate:status
//	inventory seed                   # sample products
//	inventory route:list
//	inventory catalog:export --disk s3 --path backups/catalog.json
//	inventory catalog:import backups/catalog.json --disk s3
//	inventory make:migration add_sku_to_products
//
// Settings come from the environment, .env and config/app.json.
package main
