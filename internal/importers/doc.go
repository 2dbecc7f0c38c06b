// Package importers loads catalog records into the book catalog.
//
// # Format
//
// A catalog file is a JSON array of books:
//
//	[
//	  {
//	    "title": "Dune",
//	    "author": "Frank Herbert",
//	    "publication_date": "1965-08-01",
//	    "isbn": "9780441013593",
//	    "genre": "Science Fiction",
//	    "description": "...",
//	    "page_count": 412
//	  }
//	]
//
// # Flow
//
//	ReadCatalog → validate → skip known ISBNs → CreateBook
//
// Each record is validated with go-playground/validator. A record that fails
// validation or cannot be stored is counted as failed and the import carries
// on; records whose ISBN is already in the catalog (or appeared earlier in
// the same file) are skipped. Imported books always start with an empty
// rating aggregate.
package importers
