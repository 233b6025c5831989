// Command imagededup removes perceptual duplicate images under a folder,
// keeping the largest copy, then a PNG, then the copy in the highest
// priority folder, and asking on the terminal when all of those tie.
package main
