package exercise

import "path/filepath"

// DefaultCatalog returns the built-in routines with reference videos
// resolved against videoDir.
func DefaultCatalog(videoDir string) []*Exercise {
	return []*Exercise{
		{
			Slug: "low-lunge",
			Name: "Low Lunge",
			Sections: Sections{
				{Title: "Posture", Lines: []string{
					"A graceful movement that builds strength in place.",
					"Bend the front knee slightly while extending the back leg long.",
					"Keep the upper body upright and breathe deeply.",
					"Beginner tip: hold a wall or chair for balance at first.",
				}},
				{Title: "Benefits", Lines: []string{
					"Gently extends hip flexibility and muscle elasticity.",
					"Strengthens the lower body evenly and improves overall stability.",
				}},
				{Title: "Cautions", Lines: []string{
					"Respect your limits and progress slowly.",
					"Focus on accurate posture and breathing rather than depth.",
					"Stop immediately if a joint hurts and consult a trainer.",
				}},
				{Title: "Steps", Lines: []string{
					"1. Start from a stable stance and take a large step forward.",
					"2. Lift the back heel and balance on the toes.",
					"3. Bend the front knee until it is vertical over the ankle.",
					"4. Keep the torso upright and breathe deeply.",
				}},
			},
			ReferenceVideo: filepath.Join(videoDir, "video1.mp4"),
		},
		{
			Slug: "revolved-head-to-knee",
			Name: "Revolved Head-to-Knee Pose",
			Sections: Sections{
				{Title: "Posture", Lines: []string{
					"Extend one leg out to the side and fold the other gently.",
					"Lean the torso toward the extended leg while the opposite arm reaches up.",
					"Breathe slowly and feel the spine lengthen.",
				}},
				{Title: "Benefits", Lines: []string{
					"Deep release of the spine and surrounding muscles.",
					"Balances the side body and improves symmetry.",
				}},
				{Title: "Cautions", Lines: []string{
					"Approach slowly with your own body in mind.",
					"Consult a trainer if your back or joints hurt.",
				}},
				{Title: "Steps", Lines: []string{
					"1. Sit comfortably on the floor.",
					"2. Extend one leg to the side and bend the other.",
					"3. Slowly lean the torso toward the extended leg.",
					"4. Raise the opposite arm overhead.",
				}},
			},
			ReferenceVideo: filepath.Join(videoDir, "video6.mp4"),
		},
		{
			Slug: "standing-split",
			Name: "Standing Split",
			Sections: Sections{
				{Title: "Posture", Lines: []string{
					"Stand on one foot and lift the other leg high.",
					"Fix your gaze forward and feel your center.",
				}},
				{Title: "Benefits", Lines: []string{
					"Sharpens balance.",
					"Builds stability and strength in deep muscle layers.",
					"Improves symmetry and strengthens the core.",
				}},
				{Title: "Cautions", Lines: []string{
					"Use a wall or support when starting out.",
					"Avoid straining the knees or lower back.",
				}},
				{Title: "Steps", Lines: []string{
					"1. Start in Mountain Pose.",
					"2. Shift your weight fully onto one leg.",
					"3. Slowly raise the other leg.",
					"4. Fold the torso forward while keeping balance.",
				}},
			},
			ReferenceVideo: filepath.Join(videoDir, "video3.mp4"),
		},
		{
			Slug: "lunging-side-stretch",
			Name: "Lunging Side Stretch",
			Sections: Sections{
				{Title: "Posture", Lines: []string{
					"Step one foot far forward and lean the upper body to the side.",
					"Reach both arms overhead and keep breathing steady.",
					"Do not load the knee; listen to your body.",
				}},
				{Title: "Benefits", Lines: []string{
					"Balanced strengthening of the lower body.",
					"A dynamic stretch that deepens core stability.",
				}},
				{Title: "Cautions", Lines: []string{
					"Progress gradually.",
					"Stop immediately if your knees or joints hurt.",
				}},
				{Title: "Steps", Lines: []string{
					"1. Start with feet shoulder-width apart.",
					"2. Step one foot forward into a lunge.",
					"3. Raise both arms overhead.",
					"4. Lean the torso slowly to the side as you breathe.",
				}},
			},
			ReferenceVideo: filepath.Join(videoDir, "video4.mp4"),
		},
	}
}
