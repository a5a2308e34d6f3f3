package pumproom

// Version is the SDK version reported to the backend and to embedded frames.
const Version = "1.8.0"
