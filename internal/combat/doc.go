// Package combat implements the turn and state engine of a battle-map
// encounter: the entity registry, initiative and turn progression, action
// resolution and status effect tracking.
//
// One Engine is built per encounter with its collaborators injected: a dice
// source, a scene adapter and observers. The engine is synchronous and has a
// single logical writer. Hosts that accept calls from several goroutines must
// serialize them.
//
// Each component writes only its own concern:
//   - Registry owns entity fields and the entity set.
//   - Turns owns turn order, the current index, the round and the active flag.
//   - Tracker owns status effect durations.
//   - Resolver writes HP and conditions through the Registry and sets the
//     HasActed and HasDashed turn flags directly.
package combat
