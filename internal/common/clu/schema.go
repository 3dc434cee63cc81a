package clu

import "order-chatbot/internal/common/validation"

// A prediction with no confident intent may omit topIntent or send null;
// both decode to an empty intent.
var responseSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["result"],
  "properties": {
    "result": {
      "type": "object",
      "required": ["prediction"],
      "properties": {
        "prediction": {
          "type": "object",
          "properties": {
            "topIntent": {"type": ["string", "null"]},
            "entities": {
              "type": ["array", "null"],
              "items": {
                "type": "object",
                "required": ["category", "text"],
                "properties": {
                  "category": {"type": "string"},
                  "text": {"type": "string"}
                }
              }
            }
          }
        }
      }
    }
  }
}`)
