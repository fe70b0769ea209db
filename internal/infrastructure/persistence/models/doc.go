// Package models contains the GORM persistence models of the microfinance
// backend. Domain entities carry no ORM tags; repositories convert between
// the two with the ToDomain/FromDomain mappers defined here.
//
// Tables:
//   - customers, customer_addresses, customer_contact_details
//   - customer_commands, identification_cards
//   - task_definitions, task_instances
//   - documents, document_pages, document_page_images
//   - outbox_events
package models
