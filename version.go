package main

// Version is the application version, shown in the title bar and
// returned to the frontend.
const Version = "0.4.0"
