package decoder

// Command tables mapping validated command codes to actions. These are
// pure data: the same code always yields the same target/action pair.
// Codes absent from both tables are valid but uncatalogued remote
// buttons, not errors.
var (
	fanActions = map[int]string{
		4:  "Speed 33%",
		32: "Speed 66%",
		35: "Toggle",
		64: "Speed 100%",
		98: "Off",
	}

	lightActions = map[int]string{
		10:  "Brightness 12.5%",
		11:  "25%",
		12:  "37.5%",
		13:  "50%",
		14:  "62.5%",
		15:  "75%",
		72:  "87.5%",
		73:  "100%",
		138: "On",
		266: "Off",
		768: "Toggle",
	}
)

// Classify maps a validated command code to its target category and
// action label. Unrecognised codes classify as (Unknown, "Unknown").
func Classify(command int) (Target, string) {
	if action, ok := fanActions[command]; ok {
		return TargetFan, action
	}
	if action, ok := lightActions[command]; ok {
		return TargetLight, action
	}
	return TargetUnknown, "Unknown"
}
