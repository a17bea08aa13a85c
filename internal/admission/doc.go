// Package admission gates every API request using per-identity sliding-window
// counters, a temporary block set, and bot heuristics. All shared state is
// owned by the Controller and guarded by a single mutex; callers interact only
// through Admit or the HTTP middleware.
package admission
