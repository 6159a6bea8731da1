// Package progression holds the shared level/XP model and the services that
// grant experience outside of badge awarding. Every collaborator that touches
// experience derives the level through Level so the two can never drift.
package progression

// XPPerLevel is the experience span of one level.
const XPPerLevel = 100

// Level maps cumulative experience to a level: floor(xp/100) + 1.
// Level 1 covers [0, 99]; negative input clamps to level 1.
func Level(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// XPIntoLevel returns how far into the current level the experience total is.
func XPIntoLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// XPToNextLevel returns the experience still needed to reach the next level.
func XPToNextLevel(xp int) int {
	return XPPerLevel - XPIntoLevel(xp)
}
