package tuning

import "github.com/santhosh-tekuri/jsonschema/v5"

// The tuning file schema. Kept permissive on unknown keys so older files
// keep loading across releases; known keys are type- and range-checked.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "tick_rate_hz": {"type": "integer", "minimum": 1, "maximum": 240},
    "planning_interval": {"type": "number", "exclusiveMinimum": 0},
    "combat_planning_interval": {"type": "number", "exclusiveMinimum": 0},
    "max_plan_depth": {"type": "integer", "minimum": 1, "maximum": 64},
    "action_costs": {
      "type": "object",
      "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
    },
    "goal_priorities": {
      "type": "object",
      "additionalProperties": {"type": "number", "minimum": 0}
    },
    "sensors": {
      "type": "object",
      "properties": {
        "vision_range": {"type": "number", "exclusiveMinimum": 0},
        "vision_fov_deg": {"type": "number", "exclusiveMinimum": 0, "maximum": 360},
        "hearing_range": {"type": "number", "minimum": 0},
        "danger_radius": {"type": "number", "minimum": 0},
        "cover_radius": {"type": "number", "minimum": 0},
        "alarm_radius": {"type": "number", "minimum": 0},
        "injured_below": {"type": "number", "minimum": 0, "maximum": 1},
        "outnumbered_at": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("tuning.schema.json", configSchema)

func validate(doc any) error {
	return compiledSchema.Validate(doc)
}
