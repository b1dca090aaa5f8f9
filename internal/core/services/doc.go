// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The indexing pipeline is layered leaf-first:
//
//   - TableExtractor and SerializeTable turn detected tables into text
//   - ContentDescriber and ImageExtractor turn embedded images into text
//   - PagePipeline folds one page's text, tables and images into an index
//   - DocumentIndexer builds one index per document
//   - BatchOrchestrator runs a batch in rich or plain mode
//
// Stager and Publisher move documents in and indexes out.
//
// Services are pure Go with no CGO.
package services
