package search

// DefaultIndexName is the index used for address documents.
const DefaultIndexName = "neighborly_addresses"

// buildIndexMapping returns the mapping for the address index. Display is
// indexed with an edge n-gram analyzer so partial street names match.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase", "asciifolding"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 1,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":                { "type": "keyword" },
      "display":           { "type": "text", "fields": { "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "street_address":    { "type": "text" },
      "city":              { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "state":             { "type": "keyword" },
      "zip_code":          { "type": "keyword" },
      "formatted_address": { "type": "keyword" },
      "review_count":      { "type": "integer" },
      "updated_at":        { "type": "date" }
    }
  }
}`
}
