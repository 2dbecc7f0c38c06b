// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, sqlite error helpers
//	├── books/           # Book catalog reads, admin CRUD, metadata updates
//	└── users/           # User accounts and API token lookup
//
// Ratings, notes and reading lists are written by the services in
// internal/catalog, which own the transactional rules for those tables.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookshelf.db", database.Options{})
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(ctx, 123)
//
// # Interface Implementations
//
//   - books.Repository: implements catalog.BookCatalog and metadata.BookUpdater
//   - users.Repository: implements auth.UserRepository
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in NewDatabase's AutoMigrate call
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
