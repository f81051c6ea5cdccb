package blackboard

// Pose and locomotion inputs, written by the agent driver before each tick.
const (
	Position Key = "position" // math.Vec2, feet of the agent
	Facing   Key = "facing"   // float32, +1 right, -1 left
	Grounded Key = "grounded" // bool
)

// Outputs read by the locomotion controller.
const (
	IsMoving      Key = "is_moving"      // bool
	JumpForce     Key = "jump_force"     // float32
	CanJump       Key = "can_jump"       // bool
	JumpRequested Key = "jump_requested" // bool
	IsStunned     Key = "is_stunned"     // bool
	StunDuration  Key = "stun_duration"  // float32, seconds left
	SpeedPenalty  Key = "speed_penalty"  // float32, 0..1
)

// Planning state.
const (
	PendingJumps  Key = "pending_jumps"   // *planning.JumpQueue
	LastSighting  Key = "last_sighting"   // math.OptVec2, launch of the last recorded jump
	LaunchPoint   Key = "launch_point"    // math.OptVec2
	LandPoint     Key = "land_point"      // math.OptVec2
	MinJumpHeight Key = "min_jump_height" // float32
	ApexHeight    Key = "apex_height"     // float32
)
