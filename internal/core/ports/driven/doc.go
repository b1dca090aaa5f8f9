// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PDFOpener: Opens documents for text, layout and image extraction
//   - TableDetector: Locates table regions on a page
//   - ImageDecoder: Decodes embedded image bytes
//   - EmbeddingService: Generates vector embeddings
//   - TextSplitter: Splits text into bounded chunks
//   - VectorIndexFactory: Creates empty vector indexes
//   - IndexStore: Persists indexes to local files
//   - ObjectStore: Lists, downloads and uploads objects
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for image description
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VisionModel: Describes images. Without it, image surrogates carry empty descriptions.
//   - Progress: Progress display. Without it, stages run silently.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
