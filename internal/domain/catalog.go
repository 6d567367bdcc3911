package domain

// KeyPrefix namespaces every key the service writes to the vector store.
// main assigns it from configuration before any store is constructed.
var KeyPrefix = "geodex:"

// DatasetCollection is the logical collection holding harvested dataset
// descriptions. The service manages exactly one.
const DatasetCollection = "datasets"
