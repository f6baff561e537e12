package scenario

// DemoScript is the built-in scenario used by the -demo flag. Forty
// seconds of driving that touches every telemetry kind: a launch up
// through the gears, a nitro burn to depletion, a handbrake drift held
// to a clean exit, and a throttle-on spin-out in the wet.
const DemoScript = `# midnight demo run
track "Shutoko Docks" origin=35.6762,139.6503 size=2048 author=studio

vehicle 1 "Raven GT" raven_gt_s2 speed=142 accel=78 handling=66 braking=71 hp=560 weight=1420 nitro
vehicle 2 "Kaze RS" kaze_rs_mk4 speed=128 accel=84 handling=74 braking=68 hp=480 weight=1260 nitro

# grid launch
at 0 throttle=1
at 6 vehicle=2 nitro
at 8 nitro
at 13 nitro=off

# slipstream on the straight
draft at 14 vehicle=1 on
at 17 vehicle=1 shift_down

# handbrake entry into the dock hairpin
at 18 vehicle=1 steer=-0.8 handbrake
at 18.4 vehicle=1 handbrake=off
at 20 vehicle=1 steer=0.5
at 23 vehicle=1 steer=0
draft at 23 vehicle=1 off

# rain rolls in
weather at 26 grip=0.8 wetness=0.7
damage at 27 vehicle=2 0.35

# wet spin-out under power
at 30 vehicle=2 steer=0.9 handbrake
at 30.5 vehicle=2 handbrake=off throttle=1

end 40
`
